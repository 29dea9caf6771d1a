package core

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow() bool
}

// LimitConfig.Limit is the number of requests allowed per minute.
type LimitConfig struct {
	Limit int
}

type LimitOption func(*LimitConfig)

func WithLimit(limit int) LimitOption {
	return func(c *LimitConfig) {
		c.Limit = limit
	}
}

var (
	limiterMu sync.Mutex
	limiters  = make(map[string]*rate.Limiter)
)

// UseLimiter returns the per-key limiter, creating it on first use. The
// limiter for a key keeps its initial rate even if later calls pass a
// different limit.
func (s *Core) UseLimiter(key string, opts ...LimitOption) Limiter {
	cfg := &LimitConfig{
		Limit: 60,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiterMu.Lock()
	defer limiterMu.Unlock()
	l, exist := limiters[key]
	if !exist {
		limit := rate.Every(time.Minute / time.Duration(cfg.Limit))
		l = rate.NewLimiter(limit, cfg.Limit*2)
		limiters[key] = l
	}
	return l
}
