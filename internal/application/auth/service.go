package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/infrastructure/google"
	"golang.org/x/crypto/bcrypt"
)

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type PasswordLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is the bearer credential handed to the admin panel.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Service interface {
	LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*Token, error)
	LoginWithPassword(ctx context.Context, req PasswordLoginRequest) (*Token, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type tokenSigner interface {
	Sign(email, role string) (string, time.Time, error)
}

type service struct {
	verifier     googleVerifier
	signer       tokenSigner
	allowed      map[string]struct{}
	adminEmail   string
	passwordHash []byte
}

func NewService(verifier googleVerifier, signer tokenSigner, cfg *config.Config) Service {
	allowed := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		allowed[strings.ToLower(e)] = struct{}{}
	}
	return &service{
		verifier:     verifier,
		signer:       signer,
		allowed:      allowed,
		adminEmail:   strings.ToLower(cfg.AdminEmail),
		passwordHash: []byte(cfg.AdminPasswordHash),
	}
}

func (s *service) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*Token, error) {
	p, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(p.Email)
	if !p.EmailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	if _, ok := s.allowed[email]; !ok {
		slog.Warn("google sign-in rejected", "email", email)
		return nil, fmt.Errorf("%s is not an admin: %w", email, domain.ErrForbidden)
	}
	return s.issue(email)
}

func (s *service) LoginWithPassword(_ context.Context, req PasswordLoginRequest) (*Token, error) {
	if s.adminEmail == "" || len(s.passwordHash) == 0 {
		return nil, fmt.Errorf("password login disabled: %w", domain.ErrUnauthorized)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	// Always hash so a wrong email costs the same as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !emailOK || pwErr != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.issue(email)
}

func (s *service) issue(email string) (*Token, error) {
	tok, exp, err := s.signer.Sign(email, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{AccessToken: tok, ExpiresAt: exp}, nil
}
