// Package ratelimit throttles outbound calls per destination host.
// State is process-local: each worker process keeps its own buckets, so
// a deployment fanning out across N processes should expect up to N×
// the configured per-host rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Gate is a keyed token bucket. Each host gets its own limiter with the
// configured steady rate and a burst equal to the rate.
type Gate struct {
	mu       sync.Mutex
	perSec   float64
	limiters map[string]*rate.Limiter
}

func NewGate(perSec float64) *Gate {
	return &Gate{
		perSec:   perSec,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Check consumes a token for host if one is available and returns
// admitted=true. Otherwise no token is consumed and retryAt is the
// instant at which the next token becomes available.
func (g *Gate) Check(host string) (admitted bool, retryAt time.Time) {
	g.mu.Lock()
	lim, ok := g.limiters[host]
	if !ok {
		burst := int(g.perSec)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(g.perSec), burst)
		g.limiters[host] = lim
	}
	g.mu.Unlock()

	res := lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		// Give the token back; the job is deferred, not queued here.
		res.Cancel()
		return false, time.Now().Add(delay)
	}
	return true, time.Time{}
}
