package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cesargomez89/weathercache/internal/domain"
	"github.com/cesargomez89/weathercache/internal/store"
	"github.com/cesargomez89/weathercache/internal/weathersync"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps the error taxonomy onto HTTP status codes. A delete refused by
// the weather foreign key is a 409.
func statusFor(err error) int {
	var unsupported *domain.UnsupportedResourceError
	var fetchErr *domain.FetchError
	var malformed *domain.MalformedPayloadError
	var verrs validator.ValidationErrors

	switch {
	case errors.As(err, &unsupported):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.As(err, &malformed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidRecord), errors.Is(err, store.ErrInvalidQuery), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, weathersync.ErrSyncInProgress), errors.Is(err, store.ErrConstraint):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
