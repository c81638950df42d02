// Package ratelimit caps how often one key (a user or a client IP) may act.
package ratelimit

import "context"

// Limiter decides whether one more event for key fits in the current window.
// Implementations fail open: on backend errors they allow the event and return the error.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Nop allows everything.
type Nop struct{}

func (Nop) Allow(context.Context, string) (bool, error) { return true, nil }
