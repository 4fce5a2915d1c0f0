package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	principal *models.Principal
	err       error
	gotToken  string
	calls     int
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	f.calls++
	f.gotToken = token
	return f.principal, f.err
}

func TestAuthenticator_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		authErr    error
		wantStatus int
		wantMsg    string
		wantCalls  int
	}{
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: common.MsgAccessTokenRequired},
		{name: "wrong scheme", header: "Token abc", wantStatus: http.StatusUnauthorized, wantMsg: common.MsgAccessTokenRequired},
		{name: "malformed", header: "Bearer abc", authErr: common.ErrMalformedToken,
			wantStatus: http.StatusUnauthorized, wantMsg: common.MsgInvalidToken, wantCalls: 1},
		{name: "bad signature", header: "Bearer abc", authErr: common.ErrInvalidSignature,
			wantStatus: http.StatusUnauthorized, wantMsg: common.MsgInvalidToken, wantCalls: 1},
		{name: "expired", header: "Bearer abc", authErr: common.ErrTokenExpired,
			wantStatus: http.StatusUnauthorized, wantMsg: common.MsgInvalidToken, wantCalls: 1},
		{name: "account gone", header: "Bearer abc", authErr: common.ErrUserNotFound,
			wantStatus: http.StatusUnauthorized, wantMsg: common.MsgUserNotFound, wantCalls: 1},
		{name: "store down", header: "Bearer abc", authErr: errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError, wantMsg: common.MsgInternalError, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuthenticator{err: tt.authErr}
			a := NewAuthenticator(fa, logging.Discard(), nil)

			reached := false
			h := a.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { reached = true }))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set(common.AuthorizationHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, reached, "protected handler must not run")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalls, fa.calls)

			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMsg, env.Error)
		})
	}
}

func TestAuthenticator_AttachesPrincipal(t *testing.T) {
	want := &models.Principal{UserID: "u-1", User: &models.PublicUser{ID: "u-1", Email: "a@b.c"}}
	fa := &fakeAuthenticator{principal: want}
	a := NewAuthenticator(fa, logging.Discard(), nil)

	var got *models.Principal
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		require.True(t, ok)
		got = p
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer tok-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tok-123", fa.gotToken)
	assert.Same(t, want, got)
}

func TestRecoverer_AnswersWithEnvelope(t *testing.T) {
	h := Recoverer(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
}

func TestRecoverer_RepanicsOnAbort(t *testing.T) {
	h := Recoverer(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
