// Package notifier delivers breach detection events to owners.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/good-yellow-bee/breachwatch/internal/metrics"
	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// Notifier is the interface for all notification channels.
type Notifier interface {
	// Name returns the channel name (e.g., "email", "webhook").
	Name() string
	// Send delivers one breach event.
	Send(ctx context.Context, event models.BreachEvent) error
	// Close releases any resources.
	Close() error
}

// ErrRateLimited is returned when an event is dropped due to rate limiting.
var ErrRateLimited = fmt.Errorf("notification rate limited")

// Dispatcher fans breach events out to all registered channels. It satisfies
// the monitor engine's event sink contract.
type Dispatcher struct {
	mu          sync.RWMutex
	notifiers   map[string]Notifier
	rateLimiter *RateLimiter
}

// NewDispatcher creates a dispatcher with default rate limiting.
func NewDispatcher() *Dispatcher {
	return NewDispatcherWithRateLimit(DefaultRateLimitConfig())
}

// NewDispatcherWithRateLimit creates a dispatcher with a custom rate limit.
func NewDispatcherWithRateLimit(config RateLimitConfig) *Dispatcher {
	return &Dispatcher{
		notifiers:   make(map[string]Notifier),
		rateLimiter: NewRateLimiter(config),
	}
}

// Register adds a channel to the dispatcher.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers[n.Name()] = n
}

// Unregister removes a channel from the dispatcher.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.notifiers, name)
}

// Get returns a channel by name.
func (d *Dispatcher) Get(name string) (Notifier, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.notifiers[name]
	return n, ok
}

// BreachDetected delivers one event to every registered channel. Returns
// ErrRateLimited when the event is dropped by the dispatcher's rate limiter.
// If every channel fails, the rate limiter token is refunded so a transient
// outage does not eat the notification budget.
func (d *Dispatcher) BreachDetected(ctx context.Context, event models.BreachEvent) error {
	if d.rateLimiter != nil && !d.rateLimiter.Allow() {
		metrics.NotificationsTotal.WithLabelValues("all", "rate_limited").Inc()
		return ErrRateLimited
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var errs []error
	for name, n := range d.notifiers {
		if err := n.Send(ctx, event); err != nil {
			metrics.NotificationsTotal.WithLabelValues(name, "failed").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(name, "sent").Inc()
	}

	if len(errs) > 0 {
		if len(errs) == len(d.notifiers) && d.rateLimiter != nil {
			d.rateLimiter.Release()
		}
		return fmt.Errorf("notification errors: %v", errs)
	}
	return nil
}

// RateLimitStats returns the rate limiter statistics.
func (d *Dispatcher) RateLimitStats() RateLimitStats {
	if d.rateLimiter == nil {
		return RateLimitStats{}
	}
	return d.rateLimiter.Stats()
}

// Close closes all registered channels.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for name, n := range d.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	d.notifiers = make(map[string]Notifier)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
