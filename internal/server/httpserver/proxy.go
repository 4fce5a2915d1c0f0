package httpserver

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/go-chi/chi/v5"
)

// UserIDHeader tells the insights service which account is asking.
const UserIDHeader = "X-User-Id"

// InsightsProxy forwards /api/ai/{kind}/{userID} to the insights service
// for the authenticated caller's own data only.
type InsightsProxy struct {
	proxy  *httputil.ReverseProxy
	logger logging.Logger
}

// NewInsightsProxy targets upstream, keeping the request path intact.
func NewInsightsProxy(upstream *url.URL, l logging.Logger) *InsightsProxy {
	p := &InsightsProxy{logger: l.With("module", "insights_proxy")}

	p.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.Out.URL.Path = pr.In.URL.Path
			pr.Out.URL.RawPath = pr.In.URL.RawPath
			pr.Out.Header.Del(common.AuthorizationHeaderName)
			if principal, ok := auth.PrincipalFromContext(pr.In.Context()); ok {
				pr.Out.Header.Set(UserIDHeader, principal.UserID)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.logger.Error(r.Context(), "insights upstream failed", "path", r.URL.Path, "error", err.Error())
			writeError(w, http.StatusBadGateway, "AI service unavailable")
		},
	}

	return p
}

// ServeHTTP checks ownership and forwards.
func (p *InsightsProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.MsgAccessTokenRequired)
		return
	}

	if chi.URLParam(r, "userID") != principal.UserID {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	p.proxy.ServeHTTP(w, r)
}
