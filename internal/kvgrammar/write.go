package kvgrammar

import (
	"io"
	"strings"
)

// LineEnding terminates every line written for the game.
const LineEnding = "\r\n"

// WriteLines writes each line followed by LineEnding.
func WriteLines(w io.Writer, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(LineEnding)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Quote wraps s in double quotes.
func Quote(s string) string {
	return `"` + s + `"`
}

// Quotable reports whether s can be written as a quoted token.
func Quotable(s string) bool {
	return s != "" && !strings.ContainsAny(s, "\"\r\n")
}
