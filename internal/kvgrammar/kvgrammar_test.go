package kvgrammar_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mapassist/internal/kvgrammar"
	"mapassist/internal/scripterr"
)

func TestParseLineTokens(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  []string
		quote []bool
	}{
		{"tabs", "BaseWeight\t500", []string{"BaseWeight", "500"}, []bool{false, false}},
		{"quoted", `	"file"	"music/a b.mp3"`, []string{"file", "music/a b.mp3"}, []bool{true, true}},
		{"brace split", "slappers 0}", []string{"slappers", "0", "}"}, []bool{false, false, false}},
		{"key and open", `"music" {`, []string{"music", "{"}, []bool{true, false}},
		{"trailing comment", "MaxPlayers 16 // cap", []string{"MaxPlayers", "16"}, []bool{false, false}},
		{"quoted brace", `"{" "x"`, []string{"{", "x"}, []bool{true, true}},
		{"blank", "   ", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := kvgrammar.ParseLine(4, tt.raw)
			if err != nil {
				t.Fatalf("ParseLine returned error: %v", err)
			}
			if len(line.Tokens) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %v", len(line.Tokens), line.Tokens, tt.want)
			}
			for i, tok := range line.Tokens {
				if tok.Text != tt.want[i] || tok.Quoted != tt.quote[i] || tok.Line != 4 {
					t.Fatalf("token %d = %+v, want %q quoted=%v", i, tok, tt.want[i], tt.quote[i])
				}
			}
		})
	}
}

func TestParseLineUnterminatedQuote(t *testing.T) {
	_, err := kvgrammar.ParseLine(9, `"file" "music/a.mp3`)
	if !errors.Is(err, scripterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 9") {
		t.Fatalf("expected line number in %q", err)
	}
}

func TestLineAccessors(t *testing.T) {
	line, err := kvgrammar.ParseLine(1, "\tYOLT\t\t0 }")
	if err != nil {
		t.Fatal(err)
	}
	ident, ok := line.Ident()
	if !ok || ident != "YOLT" {
		t.Fatalf("Ident() = %q, %v", ident, ok)
	}
	value, ok := line.Value()
	if !ok || value != "0" {
		t.Fatalf("Value() = %q, %v", value, ok)
	}
	if !line.HasClose() || line.StartsWithClose() {
		t.Fatal("unexpected close detection")
	}

	open, _ := kvgrammar.ParseLine(2, "{")
	if !open.StartsWithOpen() {
		t.Fatal("expected open brace line")
	}
	if _, ok := open.Ident(); ok {
		t.Fatal("brace is not an identifier")
	}
}

func TestIsComment(t *testing.T) {
	if !kvgrammar.IsComment("// header") {
		t.Fatal("column zero marker is a comment")
	}
	if kvgrammar.IsComment("  // indented") {
		t.Fatal("indented marker is not a whole-line comment")
	}
}

func TestIntegerCheck(t *testing.T) {
	for _, ok := range []string{"0", "-3", "+12", "2147483647"} {
		if err := kvgrammar.Integer.Check(1, "BaseWeight", ok); err != nil {
			t.Errorf("Check(%q) returned error: %v", ok, err)
		}
	}
	for _, bad := range []string{"1.5", "abc", "2147483648", ""} {
		err := kvgrammar.Integer.Check(1, "BaseWeight", bad)
		if !errors.Is(err, scripterr.ErrFormat) || !strings.Contains(err.Error(), "BaseWeight") {
			t.Errorf("Check(%q) = %v, want format error naming field", bad, err)
		}
	}
}

func TestGrammarValidate(t *testing.T) {
	good := kvgrammar.Grammar{
		Name:     "test",
		Fields:   []kvgrammar.FieldSpec{{Name: "A"}},
		Sections: []kvgrammar.SectionSpec{{Name: "B"}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if _, ok := good.Field("a"); !ok {
		t.Fatal("field lookup should ignore case")
	}
	dup := kvgrammar.Grammar{Name: "dup", Fields: []kvgrammar.FieldSpec{{Name: "A"}}, Sections: []kvgrammar.SectionSpec{{Name: "a"}}}
	if err := dup.Validate(); err == nil {
		t.Fatal("expected duplicate name error")
	}
	blank := kvgrammar.Grammar{Name: "blank", Fields: []kvgrammar.FieldSpec{{Name: " "}}}
	if err := blank.Validate(); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestParseDocumentNested(t *testing.T) {
	src := "// header\r\n\"music\"\r\n{\r\n\t\"file\"\t\"music/a.mp3\"\r\n\t\"night\"\r\n\t{\r\n\t\t\"file\" \"music/b.mp3\"\r\n\t}\r\n}\r\n"
	doc, err := kvgrammar.ParseDocument(strings.NewReader(src), kvgrammar.ParseOptions{MaxDepth: 2})
	if err != nil {
		t.Fatalf("ParseDocument returned error: %v", err)
	}
	root, err := doc.Root("MUSIC")
	if err != nil {
		t.Fatalf("Root returned error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected two root entries, got %+v", root.Children)
	}
	sub := root.Children[1]
	if !sub.Block || sub.Key != "night" || len(sub.Children) != 1 || sub.Children[0].Value != "music/b.mp3" {
		t.Fatalf("unexpected sub-block %+v", sub)
	}
}

func TestParseDocumentFailures(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		depth   int
		subject string
	}{
		{"too deep", "\"music\"\n{\n\"a\"\n{\n\"b\"\n{\n\"file\" \"x\"\n}\n}\n}\n", 2, "b"},
		{"empty block", "\"resources\"\n{\n}\n", 1, "resources"},
		{"unclosed", "\"resources\"\n{\n\"a.vmt\" \"file\"\n", 1, "resources"},
		{"stray close", "}\n", 1, "}"},
		{"nameless", "{\n\"a\" \"b\"\n}\n", 1, "{"},
		{"missing value", "\"resources\"\n{\n\"a.vmt\"\n}\n", 1, "a.vmt"},
		{"value on next line", "\"resources\"\n{\n\"a.vmt\"\n\"file\"\n}\n", 1, "a.vmt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kvgrammar.ParseDocument(strings.NewReader(tt.src), kvgrammar.ParseOptions{MaxDepth: tt.depth})
			if !errors.Is(err, scripterr.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
			if !strings.Contains(err.Error(), `"`+tt.subject+`"`) {
				t.Fatalf("expected %q in %q", tt.subject, err)
			}
		})
	}
}

func TestParseDocumentNestingMessage(t *testing.T) {
	tests := []struct {
		depth int
		src   string
		want  string
	}{
		{1, "\"resources\"\n{\n\"a\"\n{\n\"x\" \"y\"\n}\n}\n", "blocks may only appear at the top level"},
		{2, "\"music\"\n{\n\"a\"\n{\n\"b\"\n{\n\"file\" \"x\"\n}\n}\n}\n", "sub-blocks may not contain further blocks"},
		{3, "\"r\"\n{\n\"a\"\n{\n\"b\"\n{\n\"c\"\n{\n\"x\" \"y\"\n}\n}\n}\n}\n", "more than 2 level(s) below the root block"},
	}
	for _, tt := range tests {
		_, err := kvgrammar.ParseDocument(strings.NewReader(tt.src), kvgrammar.ParseOptions{MaxDepth: tt.depth})
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("depth %d: expected %q, got %v", tt.depth, tt.want, err)
		}
	}
}

func TestScanLinesStripsByteOrderMark(t *testing.T) {
	src := "\ufeff\"resources\"\r\n{\r\n\"a.vmt\" \"file\"\r\n}\r\n"
	doc, err := kvgrammar.ParseDocument(strings.NewReader(src), kvgrammar.ParseOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if _, err := doc.Root("resources"); err != nil {
		t.Fatalf("Root: %v", err)
	}

	var lines []string
	err = kvgrammar.ScanLines(strings.NewReader("\ufeffa\r\n\ufeffb\r\n"), func(_ int, raw string) error {
		lines = append(lines, raw)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "\ufeffb" {
		t.Fatalf("only a leading mark on the first line is removed, got %q", lines)
	}
}

func TestDocumentRootRules(t *testing.T) {
	two := "\"a\"\n{\n\"x\" \"y\"\n}\n\"b\"\n{\n\"x\" \"y\"\n}\n"
	doc, err := kvgrammar.ParseDocument(strings.NewReader(two), kvgrammar.ParseOptions{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Root("a"); err == nil {
		t.Fatal("expected error for two roots")
	}
	if _, err := (kvgrammar.Document{}).Root("a"); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestWriteLinesUsesCRLF(t *testing.T) {
	var buf bytes.Buffer
	if err := kvgrammar.WriteLines(&buf, []string{"a", "", "b"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a\r\n\r\nb\r\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if kvgrammar.Quotable(`bad"name`) || !kvgrammar.Quotable("ok.mp3") {
		t.Fatal("unexpected Quotable result")
	}
}
