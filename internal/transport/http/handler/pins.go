package handler

import (
	"encoding/json"
	"net/http"

	"github.com/multibrand-site/internal/application/pin"
)

// PinHandler handles the gated download endpoints.
type PinHandler struct {
	svc pin.Service
}

func NewPinHandler(svc pin.Service) *PinHandler { return &PinHandler{svc: svc} }

type verifyRequest struct {
	PIN string `json:"pin"`
}

func (h *PinHandler) Issue(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Issue(r.Context())
	if err != nil {
		httpMessageError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

func (h *PinHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	url, err := h.svc.Redeem(r.Context(), req.PIN)
	if err != nil {
		httpMessageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DownloadEnvelope{DownloadURL: url})
}

func (h *PinHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Cleanup(r.Context())
	if err != nil {
		httpMessageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupEnvelope{Message: "cleanup complete", Deleted: n})
}
