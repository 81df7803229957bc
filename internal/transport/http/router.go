package http

import (
	"net/http"
	"strings"

	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/infrastructure/telemetry"
	"github.com/linkboard/linkboard/internal/processing/auth"
	"github.com/linkboard/linkboard/internal/processing/links"
	"github.com/linkboard/linkboard/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":              "health",
	"GET /metrics":             "metrics",
	"POST /api/auth/sign-up":   "auth.sign_up",
	"POST /api/auth/sign-in":   "auth.sign_in",
	"POST /api/auth/sign-out":  "auth.sign_out",
	"GET /api/auth/session":    "auth.session",
	"GET /api/auth/onboarding": "auth.onboarding",
	"POST /api/links":          "links.create",
	"GET /api/links":           "links.list",
	"PATCH /api/links/{id}":    "links.update",
	"DELETE /api/links/{id}":   "links.delete",
	"GET /api/links/stats":     "links.stats",
	"GET /{code}":              "links.redirect",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool

	RateCounter middleware.RateCounter
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

type RouterDeps struct {
	Config      *config.Config
	LinkService *links.Service
	AuthService *auth.Service
	DB          Pinger
}

func NewRouter(deps RouterDeps) http.Handler {
	return NewRouterWithOptions(deps, DefaultRouterOptions())
}

func NewRouterWithOptions(deps RouterDeps, opts RouterOptions) http.Handler {
	cfg := deps.Config
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(deps.DB)
	linksHandler := NewLinksHandler(cfg, deps.LinkService)
	authHandler := NewAuthHandler(cfg, deps.AuthService)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	mux.HandleFunc("POST /api/auth/sign-up", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/sign-in", authHandler.SignIn)
	mux.HandleFunc("POST /api/auth/sign-out", authHandler.SignOut)
	mux.HandleFunc("GET /api/auth/onboarding", authHandler.Onboarding)

	requireSession := middleware.SessionMiddleware(deps.AuthService, cfg.Auth.CookieName)

	mux.Handle("GET /api/auth/session", middleware.Chain(
		http.HandlerFunc(authHandler.Session),
		requireSession,
	))

	createMiddlewares := []func(http.Handler) http.Handler{requireSession}
	if opts.RateCounter != nil && cfg.Security.CreateRequestsPerMinute > 0 {
		createMiddlewares = append(createMiddlewares,
			middleware.RateLimitMiddleware(opts.RateCounter, int64(cfg.Security.CreateRequestsPerMinute)))
	}

	mux.Handle("POST /api/links", middleware.Chain(
		http.HandlerFunc(linksHandler.Create),
		createMiddlewares...,
	))
	mux.Handle("GET /api/links", middleware.Chain(
		http.HandlerFunc(linksHandler.List),
		requireSession,
	))
	mux.Handle("GET /api/links/stats", middleware.Chain(
		http.HandlerFunc(linksHandler.Stats),
		requireSession,
	))
	mux.Handle("PATCH /api/links/{id}", middleware.Chain(
		http.HandlerFunc(linksHandler.Update),
		requireSession,
	))
	mux.Handle("DELETE /api/links/{id}", middleware.Chain(
		http.HandlerFunc(linksHandler.Delete),
		requireSession,
	))

	mux.HandleFunc("GET /{code}", linksHandler.Redirect)

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
