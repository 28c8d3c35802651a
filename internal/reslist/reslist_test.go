package reslist_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mapassist/internal/dirindex"
	"mapassist/internal/reslist"
	"mapassist/internal/scripterr"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(rel), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newEngine() *reslist.Engine {
	return &reslist.Engine{Index: dirindex.New(nil)}
}

func manifest(entries ...string) string {
	lines := []string{`"resources"`, "{"}
	for _, e := range entries {
		lines = append(lines, "\t\""+e+"\"\t\"file\"")
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func releaseTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "maps/ge_test.bsp")
	writeFile(t, root, "maps/ge_test.res")
	writeFile(t, root, "materials/ge_test/Wall.vmt")
	writeFile(t, root, "materials/ge_test/wall.vtf")
	writeFile(t, root, "scripts/maps/ge_test.txt")
	return root
}

func TestGenerateRoundTrip(t *testing.T) {
	root := releaseTree(t)
	e := newEngine()
	var buf bytes.Buffer
	res, err := e.Generate(&buf, root)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.Entries != 3 {
		t.Fatalf("expected 3 entries, got %d\n%s", res.Entries, buf.String())
	}
	want := manifest("materials/ge_test/wall.vmt", "materials/ge_test/wall.vtf", "scripts/maps/ge_test.txt")
	if buf.String() != want {
		t.Fatalf("unexpected manifest:\n%q\nwant\n%q", buf.String(), want)
	}
	got, err := e.Validate(bytes.NewReader(buf.Bytes()), root, reslist.ModeRelease)
	if err != nil {
		t.Fatalf("generated manifest failed validation: %v", err)
	}
	if !got.Reconciliation.Ready() {
		t.Fatalf("expected ready reconciliation, got %+v", got.Reconciliation)
	}
}

func TestGenerateEmptyTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "maps/ge_test.bsp")
	if _, err := newEngine().Generate(&bytes.Buffer{}, root); !errors.Is(err, scripterr.ErrFormat) {
		t.Fatalf("expected format error for empty tree, got %v", err)
	}
}

func TestValidateNormalizesDeclaredPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "maps/foo.txt")
	src := "\"RESOURCES\"\r\n{\r\n\t\"Maps\\\\Foo.txt\"\t\"FILE\"\r\n}\r\n"
	if _, err := newEngine().Validate(strings.NewReader(src), root, reslist.ModeRelease); err != nil {
		t.Fatalf("expected normalized match, got %v", err)
	}
}

func TestValidateReferenceFailures(t *testing.T) {
	root := releaseTree(t)
	writeFile(t, root, "tools/setup.exe")
	tests := []struct {
		name    string
		entries []string
		subject string
	}{
		{"executable", []string{"materials/ge_test/wall.vmt", "materials/ge_test/wall.vtf", "scripts/maps/ge_test.txt", "tools/setup.exe"}, "tools/setup.exe"},
		{"map binary", []string{"maps/ge_test.bsp", "materials/ge_test/wall.vmt"}, "maps/ge_test.bsp"},
		{"missing", []string{"materials/ge_test/wall.vmt", "materials/ge_test/gone.vtf"}, "materials/ge_test/gone.vtf"},
		{"duplicate", []string{"materials/ge_test/wall.vmt", "materials/ge_test/wall.vtf", "Materials/GE_Test/Wall.VMT", "scripts/maps/ge_test.txt"}, "materials/ge_test/wall.vmt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine().Validate(strings.NewReader(manifest(tt.entries...)), root, reslist.ModeRelease)
			if !errors.Is(err, scripterr.ErrReference) {
				t.Fatalf("expected reference error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.subject) {
				t.Fatalf("expected %q in %q", tt.subject, err)
			}
		})
	}
}

func TestValidateCompleteness(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.vmt", "b.vmt", "c.vmt"} {
		writeFile(t, root, "materials/"+name)
	}
	src := manifest("materials/a.vmt", "materials/b.vmt")

	res, err := newEngine().Validate(strings.NewReader(src), root, reslist.ModeRelease)
	if !errors.Is(err, scripterr.ErrReconcile) {
		t.Fatalf("expected reconciliation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "materials/c.vmt") {
		t.Fatalf("expected undeclared file named in %q", err)
	}
	if !slices.Equal(res.Reconciliation.Undeclared, []string{"materials/c.vmt"}) {
		t.Fatalf("unexpected undeclared set %v", res.Reconciliation.Undeclared)
	}

	if _, err := newEngine().Validate(strings.NewReader(src), root, reslist.ModeFullCheck); err != nil {
		t.Fatalf("full check should ignore undeclared files, got %v", err)
	}
}

func TestValidateStructure(t *testing.T) {
	root := releaseTree(t)
	tests := []struct {
		name string
		src  string
	}{
		{"nested", "\"resources\"\n{\n\"sub\"\n{\n\"a.vmt\" \"file\"\n}\n}\n"},
		{"empty", "\"resources\"\n{\n}\n"},
		{"bad value", "\"resources\"\n{\n\"materials/ge_test/wall.vmt\" \"folder\"\n}\n"},
		{"wrong root", "\"files\"\n{\n\"materials/ge_test/wall.vmt\" \"file\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newEngine().Validate(strings.NewReader(tt.src), root, reslist.ModeRelease); !errors.Is(err, scripterr.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
		})
	}
}

func TestValidateAcceptsByteOrderMark(t *testing.T) {
	root := releaseTree(t)
	src := "\ufeff" + manifest("materials/ge_test/wall.vmt")
	if _, err := newEngine().Validate(strings.NewReader(src), root, reslist.ModeFullCheck); err != nil {
		t.Fatalf("reslist saved with a byte order mark should validate, got %v", err)
	}
}

func TestReconcile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.vmt")
	writeFile(t, root, "b.vmt")
	snap, err := dirindex.New(nil).Snapshot([]string{root}, dirindex.Filter{Exclude: reslist.DefaultDisallowed()})
	if err != nil {
		t.Fatal(err)
	}
	rec := reslist.Reconcile([]string{"A.vmt", "a.vmt", "a.vmt", "x.vmt", "run.EXE"}, snap, reslist.DefaultDisallowed())
	if !slices.Equal(rec.Duplicates, []string{"a.vmt"}) {
		t.Fatalf("Duplicates = %v", rec.Duplicates)
	}
	if !slices.Equal(rec.Missing, []string{"x.vmt"}) {
		t.Fatalf("Missing = %v", rec.Missing)
	}
	if !slices.Equal(rec.Disallowed, []string{"run.exe"}) {
		t.Fatalf("Disallowed = %v", rec.Disallowed)
	}
	if !slices.Equal(rec.Undeclared, []string{"b.vmt"}) {
		t.Fatalf("Undeclared = %v", rec.Undeclared)
	}
	if rec.Ready() {
		t.Fatal("expected reconciliation to be not ready")
	}
}

func TestFileHelpersIgnoreFile(t *testing.T) {
	root := releaseTree(t)
	writeFile(t, root, "src/ge_test.vmf")
	if err := os.WriteFile(filepath.Join(root, ".reslistignore"), []byte("src/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := &reslist.Engine{Index: dirindex.New(nil), IgnoreFile: ".reslistignore"}
	path := filepath.Join(root, "maps", "ge_test.res")
	res, err := e.GenerateFile(path, root)
	if err != nil {
		t.Fatalf("GenerateFile returned error: %v", err)
	}
	if res.Entries != 3 {
		t.Fatalf("expected ignore file to hide sources, got %d entries", res.Entries)
	}
	if _, err := e.ValidateFile(path, root, reslist.ModeRelease); err != nil {
		t.Fatalf("ValidateFile returned error: %v", err)
	}
	if _, err := e.ValidateFile(filepath.Join(root, "missing.res"), root, reslist.ModeRelease); !errors.Is(err, scripterr.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}
