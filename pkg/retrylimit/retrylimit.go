// Package retrylimit wraps outbound platform calls (replies, role changes)
// with an adaptive rate limit and exponential backoff.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultConfig(), func() error {
//	    return send()
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrMaxAttempts is returned (wrapped around the last error) when every
// attempt failed.
var ErrMaxAttempts = errors.New("max attempts exceeded")

// AdaptiveLimiter is a token bucket whose rate grows on success and shrinks
// when the remote side pushes back. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	now       func() time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, bounded by [lo, hi]. stepUp is added after a success, stepDown
// multiplies the rate after a rate limit (0.5 halves it).
func NewAdaptiveLimiter(initial, lo, hi, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if lo < 1 {
		lo = 1
	}
	if initial < lo {
		initial = lo
	}
	if hi < initial {
		hi = initial
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, max(1, int(initial))),
		minLimit: lo,
		maxLimit: hi,
		stepUp:   stepUp,
		stepDown: stepDown,
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless a rate limit was seen in the last 10s.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.lastError) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = a.now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = min(max(l, a.minLimit), a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(max(1, int(l)))
	}
}

// StatusCoder is implemented by errors carrying an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal wraps err so Do returns it without retrying. Fatal(nil) is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// StatusOf returns the HTTP status carried by err or anything it wraps,
// or 0.
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// IsRateLimit reports a 429.
func IsRateLimit(err error) bool { return StatusOf(err) == http.StatusTooManyRequests }

// IsServerError reports a 5xx.
func IsServerError(err error) bool {
	code := StatusOf(err)
	return code >= 500 && code < 600
}

// Config controls Do.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration
	Multiplier     float64
	Jitter         bool
	// Throttle reports whether err should slow the limiter down.
	// Nil means 429 and 5xx.
	Throttle func(error) bool
	Logger   zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2,
		Jitter:         true,
		Logger:         zerolog.Nop(),
	}
}

// Do runs fn until it succeeds, returns a FatalError, ctx is done or
// MaxAttempts is reached. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Throttle == nil {
		cfg.Throttle = func(err error) bool { return IsRateLimit(err) || IsServerError(err) }
	}

	delay := cfg.InitialDelay
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				cfg.Logger.Debug().Int("attempt", attempt).Msg("retry succeeded")
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if lim != nil && cfg.Throttle(err) {
			lim.RateLimited()
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if IsRateLimit(err) {
			wait = cfg.RateLimitDelay
		} else {
			if cfg.Jitter {
				wait = addJitter(wait)
			}
			delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
		}
		cfg.Logger.Warn().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("request failed, retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, err)
}

// addJitter adds up to 25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}
