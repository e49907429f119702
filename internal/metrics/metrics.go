// Package metrics holds Prometheus instruments that are used across the
// edge service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by principal role and outcome.",
		},
		[]string{"role", "outcome"})

	SessionRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_refresh_total",
			Help: "Hydration refreshes by role and outcome (ok, rejected, stale).",
		},
		[]string{"role", "outcome"})

	GuardDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_denials_total",
			Help: "Requests redirected away from a protected prefix, by area.",
		},
		[]string{"area"})

	ReferralVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_verify_total",
			Help: "Referral code verifications by outcome (valid, invalid, error).",
		},
		[]string{"outcome"})

	ReferralClicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_clicks_total",
			Help: "Cumulative number of referral click events recorded.",
		})
)

func init() {
	prometheus.MustRegister(
		LoginTotal,
		SessionRefreshTotal,
		GuardDenialsTotal,
		ReferralVerifyTotal,
		ReferralClicksTotal,
	)
}
