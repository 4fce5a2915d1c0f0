// Package metrics exposes Prometheus collectors for the authentication
// endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login results.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginBadRequest         = "bad_request"
	LoginError              = "error"
)

// Rejection reasons. These never reach the client.
const (
	ReasonMissingToken     = "missing_token"
	ReasonMalformedToken   = "malformed_token"
	ReasonInvalidSignature = "invalid_signature"
	ReasonExpiredToken     = "expired_token"
	ReasonUserNotFound     = "user_not_found"
	ReasonInternal         = "internal"
)

// Metrics groups the auth collectors.
type Metrics struct {
	loginsTotal     *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	acceptedTotal   *prometheus.CounterVec
}

// New registers the collectors with reg under the given namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		loginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),

		rejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "rejections_total",
			Help:      "Requests rejected by the authenticator, by transport and reason",
		}, []string{"transport", "reason"}),

		acceptedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "authenticated_requests_total",
			Help:      "Requests admitted by the authenticator, by transport",
		}, []string{"transport"}),
	}
}

// ObserveLogin counts one login attempt.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

// ObserveRejection counts one rejected request.
func (m *Metrics) ObserveRejection(transport, reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(transport, reason).Inc()
}

// ObserveAccepted counts one admitted request.
func (m *Metrics) ObserveAccepted(transport string) {
	if m == nil {
		return
	}
	m.acceptedTotal.WithLabelValues(transport).Inc()
}
