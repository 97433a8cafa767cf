package ssdb

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreakerSettings returns gobreaker settings tuned for a KV client:
// the breaker trips once at least 3 requests in the window failed at a 60%
// ratio. Pass the result in Config.CircuitBreakerSettings.
func NewCircuitBreakerSettings(name string, maxRequests uint32, interval, timeout time.Duration) *gobreaker.Settings {
	return &gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
}
