package notifier

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter that caps how many notifications
// leave the dispatcher per window, so a provider hiccup that flips many
// addresses at once cannot flood owners' inboxes.
type RateLimiter struct {
	mu           sync.Mutex
	maxPerWindow int
	window       time.Duration
	timestamps   []time.Time
	dropped      int64
	enabled      bool
}

// RateLimitConfig holds rate limiter configuration.
type RateLimitConfig struct {
	MaxPerWindow int           // Maximum notifications per window (default: 20)
	Window       time.Duration // Time window (default: 1 minute)
	Enabled      bool          // Whether rate limiting is enabled (default: true)
}

// DefaultRateLimitConfig returns default rate limit settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxPerWindow: 20,
		Window:       time.Minute,
		Enabled:      true,
	}
}

// NewRateLimiter creates a rate limiter with the given configuration.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.MaxPerWindow <= 0 {
		config.MaxPerWindow = 20
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &RateLimiter{
		maxPerWindow: config.MaxPerWindow,
		window:       config.Window,
		timestamps:   make([]time.Time, 0, config.MaxPerWindow),
		enabled:      config.Enabled,
	}
}

// Allow reports whether a notification may be sent now, consuming one slot
// of the window when it is.
func (r *RateLimiter) Allow() bool {
	if !r.enabled {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.expire(now.Add(-r.window))

	if len(r.timestamps) >= r.maxPerWindow {
		r.dropped++
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Release refunds the most recently consumed slot. Call it when a
// notification attempt fails after Allow returned true.
func (r *RateLimiter) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.timestamps) > 0 {
		r.timestamps = r.timestamps[:len(r.timestamps)-1]
	}
}

// expire drops timestamps older than cutoff. Caller holds the mutex.
func (r *RateLimiter) expire(cutoff time.Time) {
	idx := 0
	for idx < len(r.timestamps) && r.timestamps[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		r.timestamps = r.timestamps[idx:]
	}
}

// RateLimitStats reports limiter state.
type RateLimitStats struct {
	InWindow int   // notifications sent in the current window
	Dropped  int64 // total notifications dropped since start
	Enabled  bool
}

// Stats returns a snapshot of the limiter state.
func (r *RateLimiter) Stats() RateLimitStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expire(time.Now().Add(-r.window))
	return RateLimitStats{
		InWindow: len(r.timestamps),
		Dropped:  r.dropped,
		Enabled:  r.enabled,
	}
}
