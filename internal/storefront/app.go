package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Livora/internal/catalog"
	"Livora/internal/session"
	"Livora/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	Tokens   *session.TokenMaker

	MetricsEnabled bool
	MetricsToken   string

	// SuggestLimiter, when set, guards the suggestion route.
	SuggestLimiter *kit.RateLimiter
}

// NewSuggestLimiter allows perMinute suggestion lookups per session, falling
// back to the client IP for requests without one.
func NewSuggestLimiter(perMinute int) *kit.RateLimiter {
	return kit.NewRateLimiter(perMinute, time.Minute, sessionOrIP)
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.ready)

	cs := &catalog.Server{Catalog: s.Service.Catalog(), Log: deps.Log}

	r.Group(func(pr chi.Router) {
		pr.Use(session.Middleware(deps.Tokens, deps.Log))

		if deps.SuggestLimiter != nil {
			cs.SuggestLimit = deps.SuggestLimiter.Middleware
		}

		cs.Register(pr)
		s.Register(pr)
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func sessionOrIP(r *http.Request) string {
	if sid, ok := session.FromContext(r.Context()); ok {
		return "s:" + sid
	}
	return "ip:" + kit.ClientIP(r)
}
