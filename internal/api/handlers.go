package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brightpost/draftforge/internal/genconfig"
	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/profile"
	"github.com/brightpost/draftforge/internal/store"
)

// DefaultUserID is used when a request does not name a user. The service is
// single-tenant by default but every record is keyed by user for when it
// is not.
const DefaultUserID = "default"

// AppDeps holds the handler dependencies.
type AppDeps struct {
	Store     *store.Store
	Profiles  *profile.Manager
	Config    *genconfig.Service
	Learning  SignalSource
	Generator DraftGenerator
	Token     string
}

// DraftResponse pairs the generated draft with its generation metadata.
type DraftResponse struct {
	Draft generator.Draft `json:"draft"`
	Meta  MetaPayload     `json:"meta"`
}

// MetaPayload is generator.Meta with the duration flattened to milliseconds
// for the wire.
type MetaPayload struct {
	generator.Meta
	DurationMs int64 `json:"duration_ms"`
}

func handleCreateDraft(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req generator.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			req.UserID = DefaultUserID
		}
		if req.PostType == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "post_type is required")
			return
		}

		draft, meta, err := deps.Generator.Generate(r.Context(), req)
		if err != nil {
			var notAllowed *generator.PostTypeNotAllowedError
			var unavailable *generator.ProviderUnavailableError
			var malformed *generator.MalformedResponseError
			switch {
			case errors.As(err, &notAllowed):
				httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "%v", err)
			case errors.As(err, &unavailable), errors.As(err, &malformed):
				httpError(w, http.StatusBadGateway, "api_error", "%v", err)
			default:
				httpError(w, http.StatusInternalServerError, "api_error", "generation failed: %v", err)
			}
			return
		}

		writeJSON(w, http.StatusOK, DraftResponse{
			Draft: draft,
			Meta:  MetaPayload{Meta: meta, DurationMs: meta.Duration.Milliseconds()},
		})
	}
}

// FeedbackRequest records a thumbs judgement on a previously generated draft.
type FeedbackRequest struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
	Rating string `json:"rating"`
	Note   string `json:"note,omitempty"`

	// Optional generation context. When absent it is recovered from the
	// stored post record.
	Keywords []string `json:"keywords,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

func handleCreateFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			req.UserID = DefaultUserID
		}
		if req.PostID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "post_id is required")
			return
		}
		if req.Rating != store.RatingUp && req.Rating != store.RatingDown {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "rating must be %q or %q", store.RatingUp, store.RatingDown)
			return
		}

		record, err := deps.Store.GetPostRecord(req.PostID)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "post %s not found", req.PostID)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading post: %v", err)
			return
		}

		fb := store.Feedback{
			ID:        uuid.New().String(),
			UserID:    req.UserID,
			PostID:    req.PostID,
			Rating:    req.Rating,
			Note:      req.Note,
			PostType:  record.PostType,
			Tone:      record.Tone,
			Keywords:  req.Keywords,
			Hashtags:  req.Hashtags,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.AddFeedback(fb); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving feedback: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"id": fb.ID, "status": "recorded"})
	}
}

func handleLearningProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			userID = DefaultUserID
		}

		signals, err := deps.Learning.DeriveSignals(userID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deriving signals: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, signals)
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			userID = DefaultUserID
		}

		p, err := deps.Profiles.Get(userID)
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "no profile for %s", userID)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading profile: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func handlePutProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			userID = DefaultUserID
		}

		var p profile.Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if err := deps.Profiles.Set(userID, p); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// DocumentRequest uploads a business document whose extracted text becomes
// background context for generation.
type DocumentRequest struct {
	UserID   string `json:"user_id"`
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

func handleUploadDocument(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBodySize)
		defer r.Body.Close()

		var req DocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			req.UserID = DefaultUserID
		}
		if req.Filename == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "filename is required")
			return
		}

		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content must be base64")
			return
		}

		text, err := ingestDocument(req.Filename, data)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "%v", err)
			return
		}

		doc := store.ProfileDocument{
			ID:         uuid.New().String(),
			UserID:     req.UserID,
			Filename:   req.Filename,
			FileType:   fileType(req.Filename),
			Content:    text,
			UploadedAt: time.Now().UTC(),
		}
		if err := deps.Store.AddProfileDocument(doc); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving document: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":         doc.ID,
			"characters": len(text),
		})
	}
}

func handleGetConfig(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Config.Get())
	}
}

func handlePutConfig(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var cfg genconfig.GlobalConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		// Set validates and drops the cache; the next generation sees the
		// new config immediately rather than after the TTL.
		if err := deps.Config.Set(cfg); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}
