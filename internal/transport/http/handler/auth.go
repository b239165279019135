package handler

import (
	"net/http"

	"github.com/multibrand-site/internal/application/auth"
	"github.com/multibrand-site/internal/pkg/validate"
)

// AuthHandler exchanges admin credentials for an access token.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req auth.GoogleLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, r, err)
		return
	}
	tok, err := h.svc.LoginWithGoogle(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.PasswordLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, r, err)
		return
	}
	tok, err := h.svc.LoginWithPassword(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}
