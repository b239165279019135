package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/multibrand-site/internal/application/cms"
	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/transport/http/middleware"
)

// CMSHandler multiplexes content kinds over the /cms endpoint.
type CMSHandler struct {
	svc cms.Service
}

func NewCMSHandler(svc cms.Service) *CMSHandler { return &CMSHandler{svc: svc} }

// cmsRequest is the body shared by POST, PUT and DELETE.
type cmsRequest struct {
	Type domain.Kind     `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Get lists a kind, or fetches one record when id is given.
func (h *CMSHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(r.URL.Query().Get("type"))
	if !supportedKind(w, kind) {
		return
	}
	if id := r.URL.Query().Get("id"); id != "" {
		rec, err := h.svc.Get(r.Context(), kind, id)
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}
	recs, err := h.svc.List(r.Context(), kind)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeRecords(w, recs)
}

func (h *CMSHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cmsRequest
	if !decodeJSON(w, r, &req) || !supportedKind(w, req.Type) {
		return
	}
	rec, err := h.svc.Create(r.Context(), req.Type, req.Data)
	if err != nil {
		httpError(w, r, err)
		return
	}
	slog.Info("content created", "kind", rec.Kind, "id", rec.ID, "by", actor(r))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *CMSHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req cmsRequest
	if !decodeJSON(w, r, &req) || !supportedKind(w, req.Type) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	rec, err := h.svc.Update(r.Context(), req.Type, req.ID, req.Data)
	if err != nil {
		httpError(w, r, err)
		return
	}
	slog.Info("content updated", "kind", rec.Kind, "id", rec.ID, "by", actor(r))
	writeJSON(w, http.StatusOK, rec)
}

func (h *CMSHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req cmsRequest
	if !decodeJSON(w, r, &req) || !supportedKind(w, req.Type) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.svc.Delete(r.Context(), req.Type, req.ID); err != nil {
		httpError(w, r, err)
		return
	}
	slog.Info("content deleted", "kind", req.Type, "id", req.ID, "by", actor(r))
	writeMessage(w, http.StatusOK, "deleted")
}

// supportedKind answers 400 for content types the CMS does not edit.
func supportedKind(w http.ResponseWriter, kind domain.Kind) bool {
	if cms.Supported(kind) {
		return true
	}
	writeError(w, http.StatusBadRequest, "unknown content type")
	return false
}

// actor names the admin behind a request for audit logs.
func actor(r *http.Request) string {
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return c.Email
	}
	return "unknown"
}
