package mapscript

import (
	"fmt"
	"io"

	"mapassist/internal/kvgrammar"
	"mapassist/internal/scripterr"
)

type parseState int

const (
	readingTop parseState = iota
	insideSection
)

type validator struct {
	grammar      kvgrammar.Grammar
	state        parseState
	section      kvgrammar.SectionSpec
	sectionLine  int
	seenFields   map[string]bool
	seenSections map[string]bool
}

func newValidator(g kvgrammar.Grammar) *validator {
	return &validator{
		grammar:      g,
		seenFields:   make(map[string]bool, len(g.Fields)),
		seenSections: make(map[string]bool, len(g.Sections)),
	}
}

// Validate checks a map script the way the game's rotation parser reads it.
// Structural errors name the offending line and identifier; when the script
// is well formed but incomplete, every absent field and section is reported
// together.
func Validate(r io.Reader) error {
	v := newValidator(Grammar)
	if err := kvgrammar.ScanLines(r, v.consume); err != nil {
		return err
	}
	return v.finish()
}

func (v *validator) consume(number int, raw string) error {
	if kvgrammar.IsComment(raw) {
		return nil
	}
	line, err := kvgrammar.ParseLine(number, raw)
	if err != nil {
		return err
	}
	switch v.state {
	case readingTop:
		return v.top(line)
	case insideSection:
		return v.inside(line)
	default:
		return fmt.Errorf("map script validator in unknown state %d", v.state)
	}
}

func (v *validator) top(line kvgrammar.Line) error {
	if line.Empty() {
		return nil
	}
	if line.StartsWithOpen() || line.StartsWithClose() {
		return scripterr.Format(line.Number, line.Tokens[0].Text, "brace outside of a section")
	}
	ident, _ := line.Ident()
	if field, ok := v.grammar.Field(ident); ok {
		value, ok := line.Value()
		if !ok {
			return scripterr.Format(line.Number, field.Name, "expected a value")
		}
		if err := field.Kind.Check(line.Number, field.Name, value); err != nil {
			return err
		}
		v.seenFields[field.Name] = true
		return nil
	}
	if section, ok := v.grammar.Section(ident); ok {
		if v.seenSections[section.Name] {
			return scripterr.Format(line.Number, section.Name, "section appears more than once")
		}
		v.state = insideSection
		v.section = section
		v.sectionLine = line.Number
		if line.HasClose() {
			v.closeSection()
		}
		return nil
	}
	// The game skips identifiers it does not know at the top level.
	return nil
}

func (v *validator) inside(line kvgrammar.Line) error {
	if line.Blank() {
		return scripterr.Format(line.Number, v.section.Name, "section contains a blank line")
	}
	if line.Empty() {
		return scripterr.Format(line.Number, v.section.Name, "comments inside a section must start at column 0")
	}
	if line.StartsWithOpen() {
		return nil
	}
	if line.StartsWithClose() {
		v.closeSection()
		return nil
	}
	ident, _ := line.Ident()
	value, ok := line.Value()
	if !ok {
		return scripterr.Format(line.Number, ident, fmt.Sprintf("expected a value in section %s", v.section.Name))
	}
	if err := v.section.ChildKind.Check(line.Number, ident, value); err != nil {
		return err
	}
	if line.HasClose() {
		v.closeSection()
	}
	return nil
}

func (v *validator) closeSection() {
	v.seenSections[v.section.Name] = true
	v.section = kvgrammar.SectionSpec{}
	v.state = readingTop
}

func (v *validator) finish() error {
	if v.state == insideSection {
		return scripterr.Format(v.sectionLine, v.section.Name, "section is never closed")
	}
	var missing []string
	for _, f := range v.grammar.Fields {
		if !v.seenFields[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	for _, s := range v.grammar.Sections {
		if !v.seenSections[s.Name] {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) > 0 {
		return scripterr.Missing(missing...)
	}
	return nil
}
