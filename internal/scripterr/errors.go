package scripterr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO        = errors.New("i/o failure")
	ErrFormat    = errors.New("format error")
	ErrMissing   = errors.New("missing required entries")
	ErrReference = errors.New("unresolved reference")
	ErrReconcile = errors.New("reconciliation failure")
)

// Error carries the classification marker along with enough location detail
// for an author to find the offending line or file.
type Error struct {
	Kind     error
	Document string
	Line     int
	Subject  string
	Detail   string
	Items    []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Document != "" {
		b.WriteString(e.Document)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	kind := e.Kind
	if kind == nil {
		kind = ErrFormat
	}
	b.WriteString(kind.Error())
	if e.Subject != "" {
		fmt.Fprintf(&b, ": %q", e.Subject)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Items) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Items, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Format reports a structural violation at the given line.
func Format(line int, subject, detail string) error {
	return &Error{Kind: ErrFormat, Line: line, Subject: subject, Detail: detail}
}

// Missing reports every required field or section that never appeared.
func Missing(items ...string) error {
	return &Error{Kind: ErrMissing, Items: append([]string(nil), items...)}
}

// Reference reports a declared path that cannot be honoured.
func Reference(path, detail string) error {
	return &Error{Kind: ErrReference, Subject: path, Detail: detail}
}

// References reports several declared paths that share one failure.
func References(detail string, items []string) error {
	return &Error{Kind: ErrReference, Detail: detail, Items: append([]string(nil), items...)}
}

// Undeclared reports files present on disk that a manifest omits.
func Undeclared(items []string) error {
	return &Error{
		Kind:   ErrReconcile,
		Detail: fmt.Sprintf("%d file(s) not declared in manifest", len(items)),
		Items:  append([]string(nil), items...),
	}
}

// IO wraps an operating system failure.
func IO(op, path string, err error) error {
	return &Error{Kind: ErrIO, Subject: path, Detail: op, Err: err}
}

// InDocument attaches the document path to err. Errors that are not *Error
// are wrapped as I/O failures so every result carries a classification.
func InDocument(err error, document string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		clone := *se
		if clone.Document == "" {
			clone.Document = document
		}
		return &clone
	}
	return &Error{Kind: ErrIO, Document: document, Err: err}
}

// Kind returns a short classification label for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrMissing):
		return "missing"
	case errors.Is(err, ErrReference):
		return "reference"
	case errors.Is(err, ErrReconcile):
		return "reconcile"
	default:
		return "other"
	}
}
