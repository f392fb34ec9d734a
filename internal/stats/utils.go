package stats

import (
	"time"
)

// Fixed analysis constants
const (
	DustThreshold     = 1e-6
	NativeTokenLabel  = "SOL"
	DefaultWindowDays = 15
	dayKeyLayout      = "2006-01-02"
)

// Config holds the tunables of the analysis engine
type Config struct {
	WindowDays              int            // Daily series length (default: 15)
	TopCounterparties       int            // Counterparties kept in the result (default: 30)
	TopWindowCounterparties int            // Counterparties in a time-window panel (default: 5)
	HourlyLookback          time.Duration  // Hourly trend lookback (default: 72h)
	Location                *time.Location // Day boundary / hour-of-day zone (default: time.Local)
}

// DefaultConfig returns the default analysis configuration
func DefaultConfig() Config {
	return Config{
		WindowDays:              DefaultWindowDays,
		TopCounterparties:       30,
		TopWindowCounterparties: 5,
		HourlyLookback:          3 * 24 * time.Hour,
		Location:                time.Local,
	}
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Config) windowDays() int {
	if c.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return c.WindowDays
}

// DayKey returns the local calendar date of t as YYYY-MM-DD
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayKeyLayout)
}

// DayKeys returns the trailing days ending with now's calendar day, oldest first
func DayKeys(now time.Time, days int, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	keys := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Date(local.Year(), local.Month(), local.Day()-i, 0, 0, 0, 0, loc)
		keys = append(keys, day.Format(dayKeyLayout))
	}
	return keys
}

// StartOfDay truncates t to local midnight
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
