package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = eris.New("llm: circuit breaker open")

// Breaker stops calling a failing provider for a cooldown period after
// threshold consecutive failures. One trial call is let through once the
// cooldown has elapsed.
type Breaker struct {
	next      Client
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	failures  int
	openUntil time.Time
	probing   bool
}

// NewBreaker wraps next. A non-positive threshold disables the breaker.
func NewBreaker(next Client, threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{next: next, threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *Breaker) Generate(ctx context.Context, req Request) (string, error) {
	if b.threshold <= 0 {
		return b.next.Generate(ctx, req)
	}
	if !b.allow() {
		return "", ErrCircuitOpen
	}

	out, err := b.next.Generate(ctx, req)
	b.record(err)
	return out, err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}
	if b.now().Before(b.openUntil) || b.probing {
		return false
	}
	b.probing = true
	return true
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	// The caller giving up says nothing about provider health.
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return
	}
	if err == nil {
		b.failures = 0
		b.openUntil = time.Time{}
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
	}
}
