package session

import (
	"sync"
	"time"
)

// LimiterConfig sets the per-session abuse limits.
type LimiterConfig struct {
	MessagesPerMinute int
	BookingsPerHour   int
	MessageCooldown   time.Duration
}

func (c LimiterConfig) withDefaults() LimiterConfig {
	if c.MessagesPerMinute <= 0 {
		c.MessagesPerMinute = 30
	}
	if c.BookingsPerHour <= 0 {
		c.BookingsPerHour = 5
	}
	if c.MessageCooldown <= 0 {
		c.MessageCooldown = 2 * time.Second
	}
	return c
}

type sessionWindow struct {
	messages    []time.Time
	bookings    []time.Time
	lastMessage time.Time
}

// Limiter enforces sliding-window message and booking limits per session.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*sessionWindow
	cfg     LimiterConfig
	now     func() time.Time
}

// LimiterOption tunes the limiter.
type LimiterOption func(*Limiter)

// WithLimiterClock injects a clock for tests.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter with the given config.
func NewLimiter(cfg LimiterConfig, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		windows: make(map[string]*sessionWindow),
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AllowMessage records a message attempt and reports whether it may proceed.
// The string names the rejection reason when not allowed.
func (l *Limiter) AllowMessage(sessionID string) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.window(sessionID)

	if !w.lastMessage.IsZero() && now.Sub(w.lastMessage) < l.cfg.MessageCooldown {
		return false, "you're sending messages too quickly, give it a moment"
	}

	w.messages = pruneBefore(w.messages, now.Add(-time.Minute))
	if len(w.messages) >= l.cfg.MessagesPerMinute {
		return false, "message limit reached, please wait a minute"
	}

	w.messages = append(w.messages, now)
	w.lastMessage = now
	return true, ""
}

// AllowBooking reports whether the session may complete another booking.
func (l *Limiter) AllowBooking(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.window(sessionID)
	w.bookings = pruneBefore(w.bookings, now.Add(-time.Hour))
	return len(w.bookings) < l.cfg.BookingsPerHour
}

// RecordBooking counts a completed booking against the session.
func (l *Limiter) RecordBooking(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.window(sessionID)
	w.bookings = pruneBefore(w.bookings, now.Add(-time.Hour))
	w.bookings = append(w.bookings, now)
}

// Forget drops all tracking for a session.
func (l *Limiter) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, sessionID)
}

func (l *Limiter) window(sessionID string) *sessionWindow {
	w, ok := l.windows[sessionID]
	if !ok {
		w = &sessionWindow{}
		l.windows[sessionID] = w
	}
	return w
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	keep := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	return keep
}
