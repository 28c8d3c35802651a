package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"mapassist/internal/preflight"
	"mapassist/internal/release"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// statusStyle is how one outcome appears on a status line.
type statusStyle struct {
	label string
	color string
}

var statusStyles = map[release.Status]statusStyle{
	release.StatusOK:    {label: "OK", color: ansiGreen},
	release.StatusWarn:  {label: "WARN", color: ansiYellow},
	release.StatusError: {label: "ERROR", color: ansiRed},
}

// checkStatus places a preflight result on the document status scale.
func checkStatus(r preflight.Result) release.Status {
	switch {
	case r.Passed:
		return release.StatusOK
	case r.Warn:
		return release.StatusWarn
	default:
		return release.StatusError
	}
}

// renderStatusLine formats "<label>: [STATUS] message". On terminals the
// whole line takes the status colour.
func renderStatusLine(label string, status release.Status, message string, colorize bool) string {
	style, ok := statusStyles[status]
	if !ok {
		style = statusStyle{label: strings.ToUpper(string(status))}
	}
	tag := "[" + style.label + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag)
	if colorize && style.color != "" {
		return style.color + line + ansiReset
	}
	return line
}

// renderDetailLine aligns a follow-up line, such as a warning, under the
// status column.
func renderDetailLine(detail string) string {
	return fmt.Sprintf("%s%-*s - %s", statusIndent, statusLabelWidth, "", detail)
}

func renderSectionHeader(title string, colorize bool) []string {
	title = strings.TrimSpace(title)
	rule := strings.Repeat("=", utf8.RuneCountInString(title))
	if colorize {
		title = ansiBold + title + ansiReset
	}
	return []string{title, rule}
}

// shouldColorize reports whether writer is a terminal and NO_COLOR is unset.
func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
