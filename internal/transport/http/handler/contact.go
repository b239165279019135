package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/multibrand-site/internal/application/contact"
	"github.com/multibrand-site/internal/domain"
)

// ContactHandler serves the public forms and their admin views.
type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler { return &ContactHandler{svc: svc} }

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var msg domain.ContactMessage
	if !decodeJSON(w, r, &msg) {
		return
	}
	if _, err := h.svc.Submit(r.Context(), msg); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "message received")
}

func (h *ContactHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var sub domain.Subscriber
	if !decodeJSON(w, r, &sub) {
		return
	}
	if err := h.svc.Subscribe(r.Context(), sub.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "subscribed")
}

func (h *ContactHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListMessages(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeRecords(w, recs)
}

func (h *ContactHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMessage(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "deleted")
}

func (h *ContactHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListSubscribers(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeRecords(w, recs)
}

func writeRecords(w http.ResponseWriter, recs []domain.ContentRecord) {
	if recs == nil {
		recs = []domain.ContentRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
