// Package ratelimit provides sliding-window admission control keyed by a
// stable per-caller string. Deriving that key (forwarded address, token
// subject) is the transport layer's concern.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultWindow       = time.Minute
	DefaultMaxPerWindow = 10
)

// Store holds per-client window state. Implementations must be safe for
// concurrent use; the limiter never caches entries outside the store.
type Store interface {
	// Hit records one request for clientID within a window of the given
	// duration and returns the request count inside the current window,
	// counting this one.
	Hit(ctx context.Context, clientID string, window time.Duration) (int, error)
}

// Limiter admits or denies requests per client identity.
type Limiter struct {
	store  Store
	window time.Duration
	max    int
}

// New builds a Limiter over an injected store. Non-positive window/max fall
// back to the defaults.
func New(store Store, window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxPerWindow
	}
	return &Limiter{store: store, window: window, max: max}
}

// Allow reports whether the client's request fits in its current window.
func (l *Limiter) Allow(ctx context.Context, clientID string) (bool, error) {
	n, err := l.store.Hit(ctx, clientID, l.window)
	if err != nil {
		return false, err
	}
	return n <= l.max, nil
}

// Max returns the per-window admission cap.
func (l *Limiter) Max() int { return l.max }

// Window returns the sliding-window duration.
func (l *Limiter) Window() time.Duration { return l.window }
