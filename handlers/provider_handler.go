package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/services/providers"
	"github.com/praxislegal/legal-ai-gateway/utils"
)

// ProviderStatus is the wire shape of one provider in the listing
type ProviderStatus struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Models  []string `json:"models"`
	Premium bool     `json:"premium"`
	Enabled bool     `json:"enabled"`
	Healthy bool     `json:"healthy"`
}

// ProviderHandler handles provider listing HTTP requests
type ProviderHandler struct {
	registry *providers.Registry
	logger   *zap.Logger
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(registry *providers.Registry, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		registry: registry,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/providers. Health probes run inline;
// each adapter enforces its own short timeout.
func (h *ProviderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	statuses := make([]ProviderStatus, 0, h.registry.Count())
	for _, adapter := range h.registry.List() {
		id := adapter.ID()
		enabled := h.registry.IsEnabled(id)

		healthy := false
		if enabled {
			healthy = adapter.IsHealthy(ctx)
		}

		statuses = append(statuses, ProviderStatus{
			ID:      string(id),
			Model:   adapter.Model(),
			Models:  adapter.ListModels(),
			Premium: id.IsPremium(),
			Enabled: enabled,
			Healthy: healthy,
		})
	}

	utils.WriteOK(w, statuses)
}
