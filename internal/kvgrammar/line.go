package kvgrammar

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"mapassist/internal/scripterr"
)

// CommentMarker opens a comment when it appears at column zero, or in the
// middle of a line outside a quoted token.
const CommentMarker = "//"

// Token is one lexical unit of a line.
type Token struct {
	Text   string
	Quoted bool
	Line   int
}

// IsOpen reports whether the token is an unquoted opening brace.
func (t Token) IsOpen() bool { return !t.Quoted && t.Text == "{" }

// IsClose reports whether the token is an unquoted closing brace.
func (t Token) IsClose() bool { return !t.Quoted && t.Text == "}" }

// IsBrace reports whether the token is either brace.
func (t Token) IsBrace() bool { return t.IsOpen() || t.IsClose() }

// Line is a tokenized source line.
type Line struct {
	Number int
	Raw    string
	Tokens []Token
}

// IsComment reports whether raw is a whole-line comment.
func IsComment(raw string) bool {
	return strings.HasPrefix(raw, CommentMarker)
}

// Blank reports whether the line carries only whitespace.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Raw) == ""
}

// Empty reports whether the line produced no tokens.
func (l Line) Empty() bool {
	return len(l.Tokens) == 0
}

// Ident returns the first token when it is not a brace.
func (l Line) Ident() (string, bool) {
	if len(l.Tokens) == 0 || l.Tokens[0].IsBrace() {
		return "", false
	}
	return l.Tokens[0].Text, true
}

// Value returns the second token when it is not a brace.
func (l Line) Value() (string, bool) {
	if len(l.Tokens) < 2 || l.Tokens[1].IsBrace() {
		return "", false
	}
	return l.Tokens[1].Text, true
}

// StartsWithOpen reports whether the first token is an opening brace.
func (l Line) StartsWithOpen() bool {
	return len(l.Tokens) > 0 && l.Tokens[0].IsOpen()
}

// StartsWithClose reports whether the first token is a closing brace.
func (l Line) StartsWithClose() bool {
	return len(l.Tokens) > 0 && l.Tokens[0].IsClose()
}

// HasClose reports whether any token is a closing brace.
func (l Line) HasClose() bool {
	for _, tok := range l.Tokens {
		if tok.IsClose() {
			return true
		}
	}
	return false
}

// ParseLine splits raw into tokens. A double quote starts a token that runs
// to the next double quote; there are no escapes. Unquoted braces always
// form their own token and an unquoted comment marker ends the line.
func ParseLine(number int, raw string) (Line, error) {
	line := Line{Number: number, Raw: raw}
	rest := raw
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			return line, nil
		}
		switch {
		case strings.HasPrefix(rest, CommentMarker):
			return line, nil
		case rest[0] == '"':
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				return Line{}, scripterr.Format(number, strings.TrimSpace(rest), "unterminated quoted string")
			}
			line.Tokens = append(line.Tokens, Token{Text: rest[1 : end+1], Quoted: true, Line: number})
			rest = rest[end+2:]
		case rest[0] == '{' || rest[0] == '}':
			line.Tokens = append(line.Tokens, Token{Text: rest[:1], Line: number})
			rest = rest[1:]
		default:
			end := strings.IndexFunc(rest, func(r rune) bool {
				return unicode.IsSpace(r) || r == '{' || r == '}' || r == '"'
			})
			if end < 0 {
				end = len(rest)
			}
			word := rest[:end]
			if i := strings.Index(word, CommentMarker); i >= 0 {
				if i > 0 {
					line.Tokens = append(line.Tokens, Token{Text: word[:i], Line: number})
				}
				return line, nil
			}
			line.Tokens = append(line.Tokens, Token{Text: word, Line: number})
			rest = rest[end:]
		}
	}
}

// byteOrderMark is the UTF-8 encoding of U+FEFF, written by some editors at
// the start of a file.
const byteOrderMark = "\ufeff"

// ScanLines calls fn for every line of r with its 1-based number. Trailing
// carriage returns and a leading byte order mark are removed.
func ScanLines(r io.Reader, fn func(number int, raw string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		if number == 1 {
			raw = strings.TrimPrefix(raw, byteOrderMark)
		}
		if err := fn(number, raw); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return scripterr.IO("read", "", err)
	}
	return nil
}
