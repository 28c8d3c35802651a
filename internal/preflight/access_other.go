//go:build !unix

package preflight

import (
	"errors"
	"io"
	"os"
)

func checkAccess(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = dir.Readdirnames(1)
	dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	tmp, err := os.CreateTemp(path, ".mapassist-access-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}
