package kvgrammar

import (
	"fmt"
	"strconv"
	"strings"

	"mapassist/internal/scripterr"
)

// ValueKind describes what a scalar value must look like.
type ValueKind int

const (
	// Integer values must parse as a signed 32-bit whole number.
	Integer ValueKind = iota
	// Text values are taken verbatim.
	Text
)

func (k ValueKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Check validates value for the identifier ident found on line.
func (k ValueKind) Check(line int, ident, value string) error {
	switch k {
	case Integer:
		if _, err := strconv.ParseInt(value, 10, 32); err != nil {
			return scripterr.Format(line, ident, fmt.Sprintf("value %q is not a whole number", value))
		}
	case Text:
		if value == "" {
			return scripterr.Format(line, ident, "value is empty")
		}
	}
	return nil
}

// FieldSpec describes one required scalar field.
type FieldSpec struct {
	Name string
	Kind ValueKind
}

// SectionSpec describes one required brace-delimited section. Sections hold
// only scalar entries; they never contain blocks.
type SectionSpec struct {
	Name      string
	ChildKind ValueKind
}

// Grammar is the declarative shape of a flat-field-and-section dialect.
type Grammar struct {
	Name     string
	Fields   []FieldSpec
	Sections []SectionSpec
}

// Validate checks the grammar definition itself: names must be non-empty and
// unique across fields and sections, ignoring case.
func (g Grammar) Validate() error {
	seen := make(map[string]struct{}, len(g.Fields)+len(g.Sections))
	claim := func(name string) error {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("%s grammar: empty name", g.Name)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s grammar: duplicate name %q", g.Name, name)
		}
		seen[key] = struct{}{}
		return nil
	}
	for _, f := range g.Fields {
		if err := claim(f.Name); err != nil {
			return err
		}
	}
	for _, s := range g.Sections {
		if err := claim(s.Name); err != nil {
			return err
		}
	}
	return nil
}

// Field looks up a field by name, ignoring case.
func (g Grammar) Field(name string) (FieldSpec, bool) {
	for _, f := range g.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Section looks up a section by name, ignoring case.
func (g Grammar) Section(name string) (SectionSpec, bool) {
	for _, s := range g.Sections {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return SectionSpec{}, false
}
