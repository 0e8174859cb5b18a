package gateway

import (
	"net/http"
	"strconv"
	"sync"

	"shareit/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter keeps a token bucket per client. RPS <= 0 disables it.
type clientLimiter struct {
	limiters sync.Map
	cfg      config.GatewayRateLimitConfig
}

func newClientLimiter(cfg config.GatewayRateLimitConfig) *clientLimiter {
	return &clientLimiter{cfg: cfg}
}

func (l *clientLimiter) enabled() bool {
	return l.cfg.RPS > 0
}

func (l *clientLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

func (l *clientLimiter) Allow(key string) bool {
	if !l.enabled() {
		return true
	}
	return l.getLimiter(key).Allow()
}

// rateLimit keys on the caller id when one is sent, otherwise on client IP.
func (g *Gateway) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, err := g.auth.UserID(c.Request); err == nil {
			key = "user:" + strconv.FormatInt(id, 10)
		}
		if !g.limiter.Allow(key) {
			abort(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		c.Next()
	}
}
