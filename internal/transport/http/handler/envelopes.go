package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/multibrand-site/internal/domain"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DownloadEnvelope is returned by a successful PIN redemption.
type DownloadEnvelope struct {
	DownloadURL string `json:"downloadUrl"`
}

// CleanupEnvelope reports how many download requests were removed.
type CleanupEnvelope struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// errorStatus maps a domain error to an HTTP status and a static client message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidPin):
		return http.StatusBadRequest, "invalid or expired PIN"
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusServiceUnavailable, "too many pending download requests, try again later"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "already exists"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func logError(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
		return
	}
	slog.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
}

// httpError writes err as an {error} body.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	logError(r, status, err)
	writeError(w, status, msg)
}

// httpMessageError writes err as a {message} body, the shape used by the PIN endpoints.
func httpMessageError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	logError(r, status, err)
	writeMessage(w, status, msg)
}

// decodeJSON reads a JSON body into v and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
