package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

// mockNotifier records sent events and can fail on demand.
type mockNotifier struct {
	mu     sync.Mutex
	name   string
	sent   []models.BreachEvent
	err    error
	closed bool
}

func (m *mockNotifier) Name() string { return m.name }

func (m *mockNotifier) Send(ctx context.Context, event models.BreachEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, event)
	return nil
}

func (m *mockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func testEvent() models.BreachEvent {
	return models.BreachEvent{
		OwnerID:        "owner-1",
		Email:          "alice@example.com",
		NewBreachCount: 2,
		BreachNames:    []string{"Adobe", "LinkedIn"},
		RiskScore:      50,
	}
}

func TestDispatcherFansOut(t *testing.T) {
	d := NewDispatcher()
	email := &mockNotifier{name: "email"}
	webhook := &mockNotifier{name: "webhook"}
	d.Register(email)
	d.Register(webhook)

	if err := d.BreachDetected(context.Background(), testEvent()); err != nil {
		t.Fatalf("BreachDetected: %v", err)
	}

	if len(email.sent) != 1 || len(webhook.sent) != 1 {
		t.Errorf("sent email=%d webhook=%d, want 1 each", len(email.sent), len(webhook.sent))
	}
}

func TestDispatcherPartialFailure(t *testing.T) {
	d := NewDispatcher()
	good := &mockNotifier{name: "webhook"}
	bad := &mockNotifier{name: "email", err: errors.New("smtp down")}
	d.Register(good)
	d.Register(bad)

	err := d.BreachDetected(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected error for failing channel")
	}
	if len(good.sent) != 1 {
		t.Errorf("healthy channel sent %d, want 1 despite sibling failure", len(good.sent))
	}
}

func TestDispatcherRateLimit(t *testing.T) {
	d := NewDispatcherWithRateLimit(RateLimitConfig{
		MaxPerWindow: 2,
		Window:       time.Minute,
		Enabled:      true,
	})
	n := &mockNotifier{name: "webhook"}
	d.Register(n)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := d.BreachDetected(ctx, testEvent()); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}

	err := d.BreachDetected(ctx, testEvent())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("third event = %v, want ErrRateLimited", err)
	}
	if len(n.sent) != 2 {
		t.Errorf("sent = %d, want 2", len(n.sent))
	}

	stats := d.RateLimitStats()
	if stats.InWindow != 2 || stats.Dropped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDispatcherRefundsTokenWhenAllChannelsFail(t *testing.T) {
	d := NewDispatcherWithRateLimit(RateLimitConfig{
		MaxPerWindow: 1,
		Window:       time.Minute,
		Enabled:      true,
	})
	bad := &mockNotifier{name: "email", err: errors.New("smtp down")}
	d.Register(bad)

	ctx := context.Background()
	if err := d.BreachDetected(ctx, testEvent()); err == nil {
		t.Fatal("expected delivery error")
	}

	// The failed attempt must not consume the only slot.
	bad.err = nil
	if err := d.BreachDetected(ctx, testEvent()); err != nil {
		t.Errorf("retry after refund = %v, want success", err)
	}
}

func TestDispatcherClose(t *testing.T) {
	d := NewDispatcher()
	n := &mockNotifier{name: "webhook"}
	d.Register(n)

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !n.closed {
		t.Error("channel not closed")
	}
	if _, ok := d.Get("webhook"); ok {
		t.Error("channel still registered after Close")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{MaxPerWindow: 1, Window: time.Minute, Enabled: false})
	for i := 0; i < 10; i++ {
		if !r.Allow() {
			t.Fatal("disabled limiter refused")
		}
	}
}

func TestRateLimiterWindowExpires(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{MaxPerWindow: 1, Window: 20 * time.Millisecond, Enabled: true})

	if !r.Allow() {
		t.Fatal("first call refused")
	}
	if r.Allow() {
		t.Fatal("second call allowed inside window")
	}

	time.Sleep(30 * time.Millisecond)
	if !r.Allow() {
		t.Error("call refused after window expired")
	}
}
