package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostUnavailable is returned while a host's breaker is open.
var ErrHostUnavailable = eris.New("resilience: host unavailable")

// BreakerState is the state of a HostBreaker.
type BreakerState int

const (
	// BreakerClosed lets downloads through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects downloads until the cooldown elapses.
	BreakerOpen
	// BreakerProbing lets a single download through to test the host.
	BreakerProbing
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerProbing:
		return "probing"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a HostBreaker.
type BreakerConfig struct {
	// Failures is the number of consecutive transient failures that open
	// the breaker.
	Failures int
	Cooldown time.Duration
}

// HostBreaker stops hammering a source host that keeps failing. Only
// transient errors count against the host; a 404 says nothing about its
// health.
type HostBreaker struct {
	host string
	cfg  BreakerConfig
	now  func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

// NewHostBreaker creates a closed breaker for host.
func NewHostBreaker(host string, cfg BreakerConfig) *HostBreaker {
	if cfg.Failures <= 0 {
		cfg.Failures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &HostBreaker{host: host, cfg: cfg, now: time.Now}
}

// Execute runs fn unless the breaker is open.
func (b *HostBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.allow() {
		return eris.Wrapf(ErrHostUnavailable, "resilience: %s", b.host)
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// State returns the current state.
func (b *HostBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *HostBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BreakerOpen {
		return true
	}
	if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
		return false
	}
	b.set(BreakerProbing)
	return true
}

func (b *HostBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !IsTransient(err) {
		b.failures = 0
		if b.state == BreakerProbing {
			b.set(BreakerClosed)
		}
		return
	}

	b.failures++
	if b.state == BreakerProbing || b.failures >= b.cfg.Failures {
		b.openedAt = b.now()
		b.set(BreakerOpen)
	}
}

func (b *HostBreaker) set(to BreakerState) {
	if b.state == to {
		return
	}
	zap.L().Warn("resilience: host breaker state change",
		zap.String("host", b.host),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// HostBreakers hands out one breaker per host.
type HostBreakers struct {
	cfg BreakerConfig

	mu       sync.Mutex
	breakers map[string]*HostBreaker
}

// NewHostBreakers creates an empty registry.
func NewHostBreakers(cfg BreakerConfig) *HostBreakers {
	return &HostBreakers{cfg: cfg, breakers: make(map[string]*HostBreaker)}
}

// For returns the breaker for host, creating it on first use.
func (r *HostBreakers) For(host string) *HostBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[host]
	if !ok {
		b = NewHostBreaker(host, r.cfg)
		r.breakers[host] = b
	}
	return b
}
