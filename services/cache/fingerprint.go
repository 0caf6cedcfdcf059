package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// Fingerprint derives the cache key for an analysis request. Two
// requests asking the same question produce the same fingerprint even
// when they arrive with different request IDs or timestamps, so those
// fields never participate.
//
// Fields are encoded as sorted key=value lines before hashing, which
// makes the digest independent of struct field order and safe against
// ambiguous concatenation.
func Fingerprint(req *models.AnalysisRequest) string {
	fields := map[string]string{
		"kind":            string(req.Kind),
		"input":           req.Input,
		"jurisdiction":    req.Context.Jurisdiction,
		"language":        req.Context.Language,
		"practice_area":   req.Context.PracticeArea,
		"confidentiality": req.Context.ConfidentialityLevel,
	}
	if req.Options.Temperature != nil {
		fields["temperature"] = strconv.FormatFloat(*req.Options.Temperature, 'g', -1, 64)
	}
	if req.Options.MaxTokens != nil {
		fields["max_tokens"] = strconv.Itoa(*req.Options.MaxTokens)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v := fields[k]
		// Length-prefix the value so embedded separators cannot
		// collide two distinct requests into one key.
		fmt.Fprintf(h, "%s=%d:%s\n", k, len(v), v)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Key namespaces a fingerprint for shared cache backends.
func Key(fingerprint string) string {
	return "gateway:analysis:" + fingerprint
}
