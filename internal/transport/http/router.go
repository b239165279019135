package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/multibrand-site/internal/application/auth"
	"github.com/multibrand-site/internal/application/cms"
	"github.com/multibrand-site/internal/application/contact"
	"github.com/multibrand-site/internal/application/pin"
	"github.com/multibrand-site/internal/application/section"
	"github.com/multibrand-site/internal/application/upload"
	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/domain"
	"github.com/multibrand-site/internal/infrastructure/cache"
	jwtinfra "github.com/multibrand-site/internal/infrastructure/jwt"
	"github.com/multibrand-site/internal/pkg/sanitize"
	"github.com/multibrand-site/internal/transport/http/handler"
	appmiddleware "github.com/multibrand-site/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Downloads   DownloadRepository
	Content     ContentRepository
	Objects     ObjectStore
	Notifier    Notifier
	Cache       cache.Cache // nil falls back to an in-process cache
	JWTProvider *jwtinfra.Provider
	Google      GoogleVerifier
}

// Services are the application services built by NewRouter. The pin service
// is also driven by the cleanup scheduler.
type Services struct {
	PIN     pin.Service
	CMS     cms.Service
	Section section.Service
	Contact contact.Service
	Upload  upload.Service
	Auth    auth.Service // nil when no JWT provider is configured
}

// NewServices wires the application services over deps.
func NewServices(cfg *config.Config, deps *Deps) *Services {
	c := deps.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	cleaner := sanitize.New()
	sectionSvc := section.NewService(deps.Content, c, cfg.SectionTTL)

	svcs := &Services{
		PIN:     pin.NewService(deps.Downloads, deps.Notifier, deps.Objects, cfg),
		CMS:     cms.NewService(deps.Content, cleaner, sectionSvc),
		Section: sectionSvc,
		Contact: contact.NewService(deps.Content, deps.Notifier, cleaner),
		Upload:  upload.NewService(deps.Objects, cfg.GatedAssetKey, cfg.MaxUploadBytes),
	}
	if deps.JWTProvider != nil {
		svcs.Auth = auth.NewService(deps.Google, deps.JWTProvider, cfg)
	}
	return svcs
}

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of the rate limiters' janitor goroutines.
func NewRouter(ctx context.Context, cfg *config.Config, svcs *Services, jwtProvider *jwtinfra.Provider) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if jwtProvider != nil {
		authMw = appmiddleware.Auth(jwtProvider)
	} else {
		slog.Warn("JWT provider not configured, admin routes are disabled")
		authMw = appmiddleware.Disabled("admin authentication is not configured")
	}

	// 5 requests/second, burst of 10, on public form and login endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	// PIN issuance emails the operator; one every 10 seconds, burst of 3.
	pinRL := appmiddleware.NewRateLimiter(ctx, rate.Every(10*time.Second), 3)

	healthH := handler.NewHealthHandler()
	pinH := handler.NewPinHandler(svcs.PIN)
	cmsH := handler.NewCMSHandler(svcs.CMS)
	sectionH := handler.NewSectionHandler(svcs.Section)
	contactH := handler.NewContactHandler(svcs.Contact)
	uploadH := handler.NewUploadHandler(svcs.Upload, cfg.MaxUploadBytes)

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health", healthH.Check)
	r.With(pinRL.Limit).Post("/pin/issue", pinH.Issue)
	r.With(sensitiveRL.Limit).Post("/pin/verify", pinH.Verify)
	r.With(appmiddleware.RequireToken(cfg.CleanupToken)).Post("/cleanup-requests", pinH.Cleanup)
	r.Get("/cms", cmsH.Get)
	r.Get("/sections", sectionH.Index)
	r.With(sensitiveRL.Limit).Post("/contact", contactH.Submit)
	r.With(sensitiveRL.Limit).Post("/subscribe", contactH.Subscribe)

	if svcs.Auth != nil {
		authH := handler.NewAuthHandler(svcs.Auth)
		r.With(sensitiveRL.Limit).Post("/auth/google", authH.Google)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
	}

	// ── Admin routes ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

		r.Post("/cms", cmsH.Create)
		r.Put("/cms", cmsH.Update)
		r.Delete("/cms", cmsH.Delete)

		r.Get("/admin/messages", contactH.ListMessages)
		r.Delete("/admin/messages/{id}", contactH.DeleteMessage)
		r.Get("/admin/subscribers", contactH.ListSubscribers)
		r.Post("/admin/uploads", uploadH.Image)
		r.Put("/admin/gated-asset", uploadH.GatedAsset)
	})

	return r
}
