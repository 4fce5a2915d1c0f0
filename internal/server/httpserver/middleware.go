package httpserver

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/metrics"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

const transportHTTP = "http"

// TokenAuthenticator turns a bearer token into a principal.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// Authenticator is the middleware guarding protected routes. A request
// reaches the wrapped handler only with a verified token whose account
// still exists.
type Authenticator struct {
	sessions TokenAuthenticator
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewAuthenticator(s TokenAuthenticator, l logging.Logger, m *metrics.Metrics) *Authenticator {
	return &Authenticator{sessions: s, logger: l.With("module", "authenticator"), metrics: m}
}

// Middleware wraps next with the bearer token check.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := auth.ParseBearer(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			a.reject(ctx, w, r, err)
			return
		}

		principal, err := a.sessions.Authenticate(ctx, token)
		if err != nil {
			a.reject(ctx, w, r, err)
			return
		}

		a.metrics.ObserveAccepted(transportHTTP)
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(ctx, principal)))
	})
}

func (a *Authenticator) reject(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	reason := metrics.ReasonFor(err)
	a.metrics.ObserveRejection(transportHTTP, reason)

	status, msg := rejection(err)
	if status == http.StatusInternalServerError {
		a.logger.Error(ctx, "authentication failed", "reason", reason, "path", r.URL.Path, "error", err.Error())
	} else {
		a.logger.Warn(ctx, "request rejected", "reason", reason, "path", r.URL.Path,
			"request_id", middleware.GetReqID(ctx))
	}

	writeError(w, status, msg)
}

// rejection picks the status and the message the client sees. Signature
// and expiry failures share one message.
func rejection(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		return http.StatusUnauthorized, common.MsgAccessTokenRequired
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusUnauthorized, common.MsgUserNotFound
	case errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, common.MsgInvalidToken
	default:
		return http.StatusInternalServerError, common.MsgInternalError
	}
}

// Recoverer turns a panicking handler into a 500 envelope.
func Recoverer(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l.Error(r.Context(), "panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
					writeError(w, http.StatusInternalServerError, common.MsgInternalError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
