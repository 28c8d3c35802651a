package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const consoleTimeLayout = "15:04:05.000"

func formatTimestamp(ts time.Time) string {
	return ts.Local().Format(consoleTimeLayout)
}

// plainValue renders a value without quoting. Path lists from Strings are
// joined with commas and durations are trimmed to microseconds.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Microsecond).String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case []string:
			return strings.Join(x, ", ")
		default:
			return fmt.Sprint(x)
		}
	default:
		return v.String()
	}
}

// formatValue renders a field value for a console line. Free text and error
// messages are quoted when they contain whitespace, '=' or quotes.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	s := plainValue(v)
	quotable := v.Kind() == slog.KindString
	if v.Kind() == slog.KindAny {
		_, quotable = v.Any().(error)
	}
	if quotable && needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}
