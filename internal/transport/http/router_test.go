package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/domain"
	jwtinfra "github.com/multibrand-site/internal/infrastructure/jwt"
	"github.com/multibrand-site/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeObjects struct{}

func (fakeObjects) Upload(context.Context, string, io.Reader, string) error { return nil }

func (fakeObjects) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://assets.example.com/" + key + "?X-Amz-Signature=abc", nil
}

func (fakeObjects) PublicURL(key string) string { return "https://assets.example.com/" + key }

type captureNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (n *captureNotifier) Notify(_ context.Context, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.bodies) == 0 {
		return ""
	}
	return n.bodies[len(n.bodies)-1]
}

// --- helpers ---

func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         time.Hour,
	})
	require.NoError(t, err)
	return p
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		GatedAssetKey:     "downloads/catalogue.pdf",
		DownloadURLExpiry: 10 * time.Minute,
		MaxUploadBytes:    1 << 20,
		SectionTTL:        time.Minute,
		AdminEmail:        "owner@example.com",
		AdminPasswordHash: string(hash),
		AllowedOrigins:    []string{"*"},
		PIN: config.PINConfig{
			TTL:                     30 * time.Minute,
			ActiveWatermark:         45,
			Capacity:                50,
			RollbackOnNotifyFailure: true,
		},
	}
}

type testServer struct {
	handler  http.Handler
	notifier *captureNotifier
	provider *jwtinfra.Provider
}

func newTestServer(t *testing.T, cfg *config.Config, withJWT bool) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.NewStore()
	n := &captureNotifier{}
	var p *jwtinfra.Provider
	if withJWT {
		p = newTestJWTProvider(t)
	}
	svcs := NewServices(cfg, &Deps{
		Downloads:   store.Downloads(),
		Content:     store.Content(),
		Objects:     fakeObjects{},
		Notifier:    n,
		JWTProvider: p,
	})
	return &testServer{handler: NewRouter(ctx, cfg, svcs, p), notifier: n, provider: p}
}

func (s *testServer) do(method, target string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		r = httptest.NewRequest(method, target, bytes.NewReader(b))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		r.Header[k] = v
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, r)
	return rr
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

var pinPattern = regexp.MustCompile(`PIN: (\d{6})`)

// --- tests ---

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)
	rr := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rr.Body.String())
}

func TestRouter_PinFlow(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)

	rr := s.do(http.MethodPost, "/pin/issue", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	m := pinPattern.FindStringSubmatch(s.notifier.last())
	require.Len(t, m, 2, "notification should carry the PIN")
	code := m[1]

	rr = s.do(http.MethodPost, "/pin/verify", map[string]string{"pin": code}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var dl struct {
		DownloadURL string `json:"downloadUrl"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&dl))
	assert.Contains(t, dl.DownloadURL, "downloads/catalogue.pdf")

	rr = s.do(http.MethodPost, "/pin/verify", map[string]string{"pin": code}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"message"`)
}

func TestRouter_PinIssueRateLimited(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pin/issue", nil, nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/pin/issue", nil, nil).Code)
}

func TestRouter_PinIssueIgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)
	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		h := http.Header{"X-Forwarded-For": []string{fmt.Sprintf("198.51.100.%d", i)}}
		codes = append(codes, s.do(http.MethodPost, "/pin/issue", nil, h).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_TrustProxyLimitsPerForwardedClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.TrustProxy = true
	s := newTestServer(t, cfg, true)
	first := http.Header{"X-Forwarded-For": []string{"198.51.100.1"}}
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pin/issue", nil, first).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/pin/issue", nil, first).Code)

	second := http.Header{"X-Forwarded-For": []string{"198.51.100.2"}}
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pin/issue", nil, second).Code)
}

func TestRouter_CleanupToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.CleanupToken = "cron-secret"
	s := newTestServer(t, cfg, true)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/cleanup-requests", nil, nil).Code)

	rr := s.do(http.MethodPost, "/cleanup-requests", nil, bearer("cron-secret"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"cleanup complete","deleted":0}`, rr.Body.String())
}

func TestRouter_CMSWriteRequiresAdmin(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)
	body := map[string]interface{}{"type": "qa", "data": map[string]string{"question": "Q?", "answer": "A."}}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/cms", body, nil).Code)

	tok, _, err := s.provider.Sign("visitor@example.com", "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/cms", body, bearer(tok)).Code)
}

func TestRouter_PasswordLoginThenEditContent(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)

	rr := s.do(http.MethodPost, "/auth/login", map[string]string{"email": "owner@example.com", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var tok struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tok))
	require.NotEmpty(t, tok.AccessToken)

	for _, title := range []string{"First", "Second"} {
		body := map[string]interface{}{"type": "videoLink", "data": map[string]string{"title": title, "url": "https://youtu.be/" + title}}
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/cms", body, bearer(tok.AccessToken)).Code)
	}

	rr = s.do(http.MethodGet, "/cms?type=videoLink", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []domain.ContentRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recs))
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Order)
	assert.Equal(t, 2, recs[1].Order)
}

func TestRouter_WrongPasswordRejected(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)
	rr := s.do(http.MethodPost, "/auth/login", map[string]string{"email": "owner@example.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_AdminDisabledWithoutJWT(t *testing.T) {
	s := newTestServer(t, testConfig(t), false)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/admin/messages", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/auth/login", map[string]string{}, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/sections", nil, nil).Code)
}

func TestRouter_ContactNotifiesOperator(t *testing.T) {
	s := newTestServer(t, testConfig(t), true)
	msg := map[string]string{"name": "Ana", "email": "ana@example.com", "brand": "furniture", "message": "Do you deliver?"}

	rr := s.do(http.MethodPost, "/contact", msg, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, s.notifier.last(), "Do you deliver?")
}
