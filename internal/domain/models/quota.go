package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CallerLimit is the static per-caller quota. Callers without a CallerLimit are counted
// against the global windows only.
type CallerLimit struct {
	Name   string `json:"name"`
	Hourly int    `json:"hourly"`
	Daily  int    `json:"daily"`
}

// ParseCallerLimit parses "name:hourly:daily".
func ParseCallerLimit(s string) (CallerLimit, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return CallerLimit{}, fmt.Errorf("invalid client limit %q: expected name:hourly:daily", s)
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return CallerLimit{}, fmt.Errorf("invalid client limit %q: name must not be empty", s)
	}
	hourly, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || hourly < 0 {
		return CallerLimit{}, fmt.Errorf("invalid client limit %q: hourly limit must be a non-negative integer", s)
	}
	daily, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || daily < 0 {
		return CallerLimit{}, fmt.Errorf("invalid client limit %q: daily limit must be a non-negative integer", s)
	}
	return CallerLimit{Name: name, Hourly: hourly, Daily: daily}, nil
}

func (c CallerLimit) String() string {
	return fmt.Sprintf("%s:%d:%d", c.Name, c.Hourly, c.Daily)
}

// WindowUsage is a point-in-time view of one counting window.
type WindowUsage struct {
	Count       int       `json:"count"`
	Limit       int       `json:"limit"`
	WindowStart time.Time `json:"window_start"`
}

// Remaining returns how many admissions are left in the window.
func (w WindowUsage) Remaining() int {
	if w.Count >= w.Limit {
		return 0
	}
	return w.Limit - w.Count
}

// QuotaStatus is a snapshot of a pair of hourly and daily windows.
type QuotaStatus struct {
	Hourly WindowUsage `json:"hourly"`
	Daily  WindowUsage `json:"daily"`
}

// CallerQuotaStatus is a QuotaStatus for a named caller.
type CallerQuotaStatus struct {
	Name string `json:"name"`
	QuotaStatus
}
