package utils

import (
	"math"
	"time"
)

// TimeNowUTC returns the current time in UTC. All elapsed-time math in the
// checkpoint model runs in UTC to avoid client/server timezone skew.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// DaysSince returns the fractional number of days elapsed between from and
// now, both normalized to UTC.
func DaysSince(from, now time.Time) float64 {
	return now.UTC().Sub(from.UTC()).Hours() / 24
}

// CeilDays rounds a fractional day count up to whole days, never below zero.
func CeilDays(days float64) int {
	if days <= 0 {
		return 0
	}
	return int(math.Ceil(days))
}
