package httpserver

import (
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps are the pieces the router mounts. Insights and Gatherer are
// optional.
type RouterDeps struct {
	Handler       *Handler
	Authenticator *Authenticator
	Insights      http.Handler
	Gatherer      prometheus.Gatherer
	Logger        logging.Logger
}

// NewRouter builds the HTTP route table.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogContext)
	r.Use(Recoverer(d.Logger))

	r.NotFound(d.Handler.NotFound)

	r.Get("/api/health", d.Handler.Health)

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", d.Handler.Login)
		r.With(d.Authenticator.Middleware).Get("/profile", d.Handler.Profile)
	})

	if d.Insights != nil {
		r.With(d.Authenticator.Middleware).Get("/api/ai/{kind}/{userID}", d.Insights.ServeHTTP)
	}

	return r
}

// requestLogContext tags every log record of the request with its id.
func requestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWith(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
