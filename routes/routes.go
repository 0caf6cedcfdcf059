package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/praxislegal/legal-ai-gateway/app"
	"github.com/praxislegal/legal-ai-gateway/handlers"
	"github.com/praxislegal/legal-ai-gateway/middleware"
	"github.com/praxislegal/legal-ai-gateway/utils"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	analyzeHandler := handlers.NewAnalyzeHandler(deps.Gateway, deps.Logger)
	usageHandler := handlers.NewUsageHandler(deps.Tracker, deps.Logger)
	providerHandler := handlers.NewProviderHandler(deps.Registry, deps.Logger)

	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Post("/analyze", analyzeHandler.HandleAnalyze)

		r.Route("/usage", func(r chi.Router) {
			r.Get("/budget", usageHandler.HandleBudget)
			r.Get("/summary", usageHandler.HandleSummary)
		})

		r.Get("/providers", providerHandler.HandleList)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
		})
	})

	return r
}
