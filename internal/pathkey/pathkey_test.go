package pathkey_test

import (
	"path/filepath"
	"testing"

	"mapassist/internal/pathkey"
)

func TestDeclared(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Maps\Foo.txt`, "maps/foo.txt"},
		{`Maps\\Foo.txt`, "maps/foo.txt"},
		{`"sound/Music/Track.MP3"`, "sound/music/track.mp3"},
		{"/materials/x.vmt", "materials/x.vmt"},
		{"./models//a.mdl", "models/a.mdl"},
		{"  scripts/maps/foo.txt ", "scripts/maps/foo.txt"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := pathkey.Declared(tt.in); got != tt.want {
			t.Errorf("Declared(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelative(t *testing.T) {
	root := filepath.Join("srv", "gesource")
	got, err := pathkey.Relative(root, filepath.Join(root, "Maps", "GE_Facility.bsp"))
	if err != nil {
		t.Fatalf("Relative returned error: %v", err)
	}
	if got != "maps/ge_facility.bsp" {
		t.Fatalf("unexpected relative path %q", got)
	}
	if _, err := pathkey.Relative(root, filepath.Join("srv", "other", "x.txt")); err == nil {
		t.Fatal("expected error for path outside root")
	}
}

func TestExtHelpers(t *testing.T) {
	if got := pathkey.Ext("Music/Theme.MP3"); got != "mp3" {
		t.Fatalf("Ext = %q", got)
	}
	if got := pathkey.Ext("README"); got != "" {
		t.Fatalf("Ext without extension = %q", got)
	}
	if !pathkey.HasExt(`sound\a.Mp3`, ".mp3") {
		t.Fatal("expected HasExt to ignore case and dot")
	}
	if pathkey.HasExt("a.wav", "mp3") {
		t.Fatal("unexpected extension match")
	}
}
