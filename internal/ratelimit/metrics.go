package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total events allowed by the rate limiter",
		},
		[]string{"scope"},
	)
	Blocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total events blocked by the rate limiter",
		},
		[]string{"scope"},
	)
	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_errors_total",
			Help: "Backend errors seen by the rate limiter (events were allowed)",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(Requests)
	prometheus.MustRegister(Blocked)
	prometheus.MustRegister(Errors)
}
