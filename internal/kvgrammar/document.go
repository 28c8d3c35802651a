package kvgrammar

import (
	"fmt"
	"io"
	"strings"

	"mapassist/internal/scripterr"
)

// Entry is either a key/value pair or a named block of entries.
type Entry struct {
	Key      string
	Value    string
	Line     int
	Block    bool
	Children []Entry
}

// Document is the parsed form of a root-block dialect.
type Document struct {
	Entries []Entry
}

// ParseOptions bounds the structure ParseDocument accepts.
type ParseOptions struct {
	// MaxDepth is the deepest block nesting allowed; a root block is depth 1.
	MaxDepth int
}

// ParseDocument reads a brace-structured key/value document. Braces must
// balance, every block needs a name and at least one entry, every key needs
// a value on its own line, and no block may nest deeper than MaxDepth.
func ParseDocument(r io.Reader, opts ParseOptions) (Document, error) {
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}
	var tokens []Token
	err := ScanLines(r, func(number int, raw string) error {
		if IsComment(strings.TrimSpace(raw)) {
			return nil
		}
		line, err := ParseLine(number, raw)
		if err != nil {
			return err
		}
		tokens = append(tokens, line.Tokens...)
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	p := &blockParser{tokens: tokens, maxDepth: opts.MaxDepth}
	entries, err := p.entries(0, nil)
	if err != nil {
		return Document{}, err
	}
	return Document{Entries: entries}, nil
}

type blockParser struct {
	tokens   []Token
	pos      int
	maxDepth int
}

func (p *blockParser) entries(depth int, parent *Token) ([]Entry, error) {
	var out []Entry
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch {
		case tok.IsClose():
			if parent == nil {
				return nil, scripterr.Format(tok.Line, "}", "closing brace without an open block")
			}
			p.pos++
			if len(out) == 0 {
				return nil, scripterr.Format(parent.Line, parent.Text, "block is empty")
			}
			return out, nil
		case tok.IsOpen():
			return nil, scripterr.Format(tok.Line, "{", "block has no name")
		}

		p.pos++
		if p.pos >= len(p.tokens) {
			return nil, scripterr.Format(tok.Line, tok.Text, "key has no value")
		}
		next := p.tokens[p.pos]
		switch {
		case next.IsOpen():
			if depth+1 > p.maxDepth {
				return nil, scripterr.Format(next.Line, tok.Text, nestingDetail(p.maxDepth))
			}
			p.pos++
			key := tok
			children, err := p.entries(depth+1, &key)
			if err != nil {
				return nil, err
			}
			out = append(out, Entry{Key: tok.Text, Line: tok.Line, Block: true, Children: children})
		case next.IsClose(), next.Line != tok.Line:
			return nil, scripterr.Format(tok.Line, tok.Text, "key has no value")
		default:
			p.pos++
			out = append(out, Entry{Key: tok.Text, Value: next.Text, Line: tok.Line})
		}
	}
	if parent != nil {
		return nil, scripterr.Format(parent.Line, parent.Text, "block is never closed")
	}
	return out, nil
}

// nestingDetail words the depth limit relative to the root block.
func nestingDetail(maxDepth int) string {
	switch maxDepth {
	case 1:
		return "blocks may only appear at the top level"
	case 2:
		return "sub-blocks may not contain further blocks"
	default:
		return fmt.Sprintf("blocks may not nest more than %d level(s) below the root block", maxDepth-1)
	}
}

// Root returns the single top-level block named name, ignoring case.
func (d Document) Root(name string) (Entry, error) {
	if len(d.Entries) == 0 {
		return Entry{}, scripterr.Format(0, name, "document has no root block")
	}
	if len(d.Entries) > 1 {
		extra := d.Entries[1]
		return Entry{}, scripterr.Format(extra.Line, extra.Key, "document must contain exactly one root block")
	}
	root := d.Entries[0]
	if !root.Block {
		return Entry{}, scripterr.Format(root.Line, root.Key, "expected a block")
	}
	if !strings.EqualFold(root.Key, name) {
		return Entry{}, scripterr.Format(root.Line, root.Key, fmt.Sprintf("root block must be named %q", name))
	}
	return root, nil
}
