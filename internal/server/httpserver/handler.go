package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/metrics"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

const maxLoginBodyBytes = 1 << 20

// SessionIssuer exchanges credentials for a token.
type SessionIssuer interface {
	Login(ctx context.Context, identifier, secret string) (*services.LoginResult, error)
}

// Handler serves the auth and health endpoints.
type Handler struct {
	sessions SessionIssuer
	logger   logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewHandler(s SessionIssuer, l logging.Logger, m *metrics.Metrics) *Handler {
	return &Handler{sessions: s, logger: l.With("module", "http_handler"), metrics: m, now: time.Now}
}

// loginRequest is the login body. Username carries the email.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
		h.metrics.ObserveLogin(metrics.LoginBadRequest)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" || req.Password == "" {
		h.metrics.ObserveLogin(metrics.LoginBadRequest)
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	res, err := h.sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
			h.logger.Info(ctx, "login rejected")
			writeError(w, http.StatusUnauthorized, common.MsgInvalidCredentials)
			return
		}
		h.metrics.ObserveLogin(metrics.LoginError)
		h.logger.Error(ctx, "login failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, common.MsgInternalError)
		return
	}

	h.metrics.ObserveLogin(metrics.LoginSuccess)
	h.logger.Info(ctx, "login succeeded", "user_id", res.User.ID)
	writeData(w, http.StatusOK, res)
}

// Profile handles GET /api/auth/profile. It runs behind the authenticator.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.MsgAccessTokenRequired)
		return
	}
	writeData(w, http.StatusOK, p.User)
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// NotFound answers unknown routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
