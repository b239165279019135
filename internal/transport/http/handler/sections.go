package handler

import (
	"net/http"

	"github.com/multibrand-site/internal/application/section"
)

type SectionHandler struct {
	svc section.Service
}

func NewSectionHandler(svc section.Service) *SectionHandler { return &SectionHandler{svc: svc} }

// Index returns every section keyed by its section key.
func (h *SectionHandler) Index(w http.ResponseWriter, r *http.Request) {
	idx, err := h.svc.Index(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idx)
}
