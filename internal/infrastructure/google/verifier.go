package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/multibrand-site/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload is the part of a Google ID token the admin sign-in looks at.
type Payload struct {
	Sub           string
	Email         string // lower-cased
	EmailVerified bool
	Name          string
	HostedDomain  string // Workspace domain, empty for consumer accounts
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks ID tokens issued to the admin panel's OAuth client.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates token against Google's keys and the configured audience.
// Every failure wraps domain.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in not configured: %w", domain.ErrUnauthorized)
	}
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		slog.Debug("google token rejected", "error", err)
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	return &Payload{
		Sub:           p.Subject,
		Email:         strings.ToLower(strings.TrimSpace(claim[string](p, "email"))),
		EmailVerified: claim[bool](p, "email_verified"),
		Name:          claim[string](p, "name"),
		HostedDomain:  claim[string](p, "hd"),
	}, nil
}

func claim[T any](p *idtoken.Payload, name string) T {
	v, _ := p.Claims[name].(T)
	return v
}
