package utils

import (
	"context"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"golang-stock-advisor/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so a single
// misbehaving task cannot take down the consumer.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging when it
// is not so long-running loops leave a trace of why they stopped.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Info("Context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// ContainsString reports whether target is present in items.
func ContainsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// CleanToValidUTF8 strips invalid UTF-8 sequences from a string.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
