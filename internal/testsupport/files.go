package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteLines writes lines joined with CRLF, the line ending of every script
// dialect.
func WriteLines(t testing.TB, path string, lines ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := strings.Join(lines, "\r\n") + "\r\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// NewRelease creates a "gesource" release tree holding a map binary, one
// music track, and one material.
func NewRelease(t testing.TB, mapName string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "gesource")
	WriteFile(t, filepath.Join(root, "maps", mapName+".bsp"), 16)
	WriteFile(t, filepath.Join(root, "sound", "music", mapName+"_theme.mp3"), 16)
	WriteFile(t, filepath.Join(root, "materials", mapName, "floor.vmt"), 16)
	return root
}

// NewInstall creates a minimal install tree carrying the install marker and
// stock music.
func NewInstall(t testing.TB) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "gesource")
	WriteFile(t, filepath.Join(root, "goldeneye.fgd"), 16)
	WriteFile(t, filepath.Join(root, "sound", "music", "ge_title.mp3"), 16)
	for _, dir := range []string{"maps", filepath.Join("scripts", "maps"), filepath.Join("scripts", "music")} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return root
}
