// Package api exposes the HTTP surface: draft generation, feedback capture,
// profile management, document uploads, and the admin config endpoints. An
// MCP server over stdio shares the same dependencies.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/learning"
)

const maxRequestBodySize = 1 << 20   // 1MB
const maxDocumentBodySize = 10 << 20 // 10MB

// DraftGenerator abstracts the generation engine for the API layer.
type DraftGenerator interface {
	Generate(ctx context.Context, req generator.Request) (generator.Draft, generator.Meta, error)
}

// SignalSource abstracts learning signal derivation for the API layer.
type SignalSource interface {
	DeriveSignals(userID string) (learning.Signals, error)
}

// NewAppHandler builds the authenticated application router. The health
// endpoint stays outside the bearer check so load balancers can probe it.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/v1/drafts", handleCreateDraft(deps))
		r.Post("/v1/feedback", handleCreateFeedback(deps))
		r.Get("/v1/learning-profile", handleLearningProfile(deps))
		r.Get("/v1/profile", handleGetProfile(deps))
		r.Put("/v1/profile", handlePutProfile(deps))
		r.Post("/v1/profile/documents", handleUploadDocument(deps))
		r.Get("/admin/config", handleGetConfig(deps))
		r.Put("/admin/config", handlePutConfig(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
