// Package ratelimit throttles the anonymous report-intake endpoint.
package ratelimit

import (
	"sync"
	"time"
)

// Throttle enforces sliding-window limits on report submissions
type Throttle struct {
	perMinute int
	perHour   int
	enabled   bool

	minuteWindow []time.Time
	hourWindow   []time.Time
	mu           sync.Mutex
}

// NewThrottle creates a throttle with the given limits
func NewThrottle(perMinute, perHour int, enabled bool) *Throttle {
	return &Throttle{
		perMinute:    perMinute,
		perHour:      perHour,
		enabled:      enabled,
		minuteWindow: make([]time.Time, 0),
		hourWindow:   make([]time.Time, 0),
	}
}

// Allow reports whether another submission fits inside the limits,
// recording it when it does
func (t *Throttle) Allow() bool {
	if !t.enabled {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.cleanup(now)

	if t.perMinute > 0 && len(t.minuteWindow) >= t.perMinute {
		return false
	}
	if t.perHour > 0 && len(t.hourWindow) >= t.perHour {
		return false
	}

	t.minuteWindow = append(t.minuteWindow, now)
	t.hourWindow = append(t.hourWindow, now)

	return true
}

// cleanup removes expired entries from the time windows
func (t *Throttle) cleanup(now time.Time) {
	t.minuteWindow = filterTimes(t.minuteWindow, now.Add(-1*time.Minute))
	t.hourWindow = filterTimes(t.hourWindow, now.Add(-1*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, ts := range times {
		if ts.After(cutoff) {
			result = append(result, ts)
		}
	}
	return result
}

// Stats contains throttle statistics
type Stats struct {
	Enabled            bool `json:"enabled"`
	RequestsLastMinute int  `json:"requests_last_minute"`
	RequestsLastHour   int  `json:"requests_last_hour"`
	LimitPerMinute     int  `json:"limit_per_minute"`
	LimitPerHour       int  `json:"limit_per_hour"`
}

// GetStats returns current throttle statistics
func (t *Throttle) GetStats() Stats {
	if !t.enabled {
		return Stats{Enabled: false}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cleanup(time.Now())

	return Stats{
		Enabled:            true,
		RequestsLastMinute: len(t.minuteWindow),
		RequestsLastHour:   len(t.hourWindow),
		LimitPerMinute:     t.perMinute,
		LimitPerHour:       t.perHour,
	}
}

// Reset clears all tracked submissions (useful for testing)
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.minuteWindow = make([]time.Time, 0)
	t.hourWindow = make([]time.Time, 0)
}
