package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/brandcast/brandcast/internal/platform"
)

// PlatformLimiter paces outbound calls per brand/platform pair with a token
// bucket, so concurrent fan-out keeps the minimum spacing the platforms'
// rate limits expect.
type PlatformLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

func NewPlatformLimiter(minInterval time.Duration) *PlatformLimiter {
	return &PlatformLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: minInterval,
	}
}

func (l *PlatformLimiter) Wait(ctx context.Context, brandID int64, p platform.Platform) error {
	if l.interval <= 0 {
		return nil
	}

	key := fmt.Sprintf("%d/%s", brandID, p)

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
