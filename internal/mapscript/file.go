package mapscript

import (
	"io"
	"os"

	"mapassist/internal/fileutil"
	"mapassist/internal/scripterr"
)

// GenerateFile writes a fresh map script to path.
func GenerateFile(path string, p Params) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Generate(w, p)
	})
	if err != nil {
		return scripterr.IO("write map script", path, err)
	}
	return nil
}

// ValidateFile validates the map script stored at path.
func ValidateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return scripterr.IO("open map script", path, err)
	}
	defer f.Close()
	return scripterr.InDocument(Validate(f), path)
}
