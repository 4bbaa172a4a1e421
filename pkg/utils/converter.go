package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatUptime renders a duration as "1d 2h 3m 4s", dropping leading zero units.
func FormatUptime(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// ParseBoolFlag accepts the spellings HTTP clients commonly send for booleans.
func ParseBoolFlag(s string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return def, fmt.Errorf("invalid boolean %q", s)
}

// ParsePositiveInt parses s as an int greater than zero, returning def when s is empty.
func ParsePositiveInt(s string, def int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def, fmt.Errorf("invalid integer %q", s)
	}
	if n <= 0 {
		return def, fmt.Errorf("value must be positive, got %d", n)
	}
	return n, nil
}
