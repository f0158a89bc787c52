// Package server builds the per-session token bucket used to throttle
// inbound messages before they reach the simulation actor.
package server

import (
	"time"

	"golang.org/x/time/rate"
)

// newSessionLimiter returns a limiter that refills Burst tokens every
// RefillInterval. Over-limit messages are dropped by the read pump, not
// treated as a session failure.
func newSessionLimiter(cfg RateLimitConfig) *rate.Limiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = defaultConfig().RateLimit.RefillInterval
	}

	return rate.NewLimiter(rate.Every(interval/time.Duration(burst)), burst)
}
