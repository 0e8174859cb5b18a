package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverRateLimitStore uses primary until it fails, then serves from
// fallback and probes primary again once a minute.
type FailoverRateLimitStore struct {
	primary   domain.RateLimitStore
	fallback  domain.RateLimitStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverRateLimitStore(primary, fallback domain.RateLimitStore, logger *zerolog.Logger) *FailoverRateLimitStore {
	return &FailoverRateLimitStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRateLimitStore) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary rate limit store failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverRateLimitStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
		return r.fallback.CheckRateLimit(ctx, key, limit, window)
	}

	// Try to recover after 1 minute
	if time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.isDown.Store(false)
			r.logger.Info().Msg("Primary rate limit store recovered")
			return allowed, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
