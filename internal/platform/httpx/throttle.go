package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// Throttle bundles the per-route rate-limit tiers. Strict guards
// credential endpoints, Normal guards mutations, Relaxed guards reads.
type Throttle struct {
	Strict  func(http.Handler) http.Handler
	Normal  func(http.Handler) http.Handler
	Relaxed func(http.Handler) http.Handler
}

// NewThrottle builds the three tiers over a shared window, keyed by
// client IP.
func NewThrottle(strict, normal, relaxed int, window time.Duration) Throttle {
	if window <= 0 {
		window = time.Minute
	}
	limiter := func(limit int) func(http.Handler) http.Handler {
		return httprate.Limit(limit, window, httprate.WithKeyFuncs(httprate.KeyByIP))
	}
	return Throttle{
		Strict:  limiter(strict),
		Normal:  limiter(normal),
		Relaxed: limiter(relaxed),
	}
}
