package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/readmodel"
	"github.com/videotube/backend/internal/repositories"
)

// apiResponse is the envelope wrapping every JSON response body.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, apiResponse{StatusCode: status, Data: data, Message: message})
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeEnvelope(ctx, w, apiResponse{StatusCode: status, Data: nil, Message: message})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, envelope apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(envelope.StatusCode)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", envelope.StatusCode, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case envelope.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "status", envelope.StatusCode, "message", envelope.Message)
	case envelope.StatusCode >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", envelope.StatusCode, "message", envelope.Message)
	}
}

// statusFromError maps the store and read-model error taxonomy onto HTTP
// status codes. Owner mismatches surface as ErrNotFound so they land on 404
// without revealing whether the record exists.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, readmodel.ErrInvalidPagination), errors.Is(err, readmodel.ErrInvalidSort):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrRefreshTokenExpired),
		errors.Is(err, auth.ErrInvalidAccessToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondStoreError logs and maps a storage error, substituting the provided
// message for client-facing statuses and a generic one for 500s.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error("storage operation failed", "error", err)
		respondError(ctx, w, status, "internal server error")
		return
	}
	respondError(ctx, w, status, message)
}

// pathID extracts and validates a UUID path segment.
func pathID(r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return raw, true
}

// requireUser fetches the authenticated user placed on the context by the
// authentication middleware. Routes registered as protected always have one;
// the guard covers direct handler invocation.
func requireUser(ctx context.Context, w http.ResponseWriter) (models.User, bool) {
	user, ok := currentUser(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
	}
	return user, ok
}
