// Package pathkey converts filesystem paths and manifest values into the
// canonical comparison form used across release checks: relative,
// forward-slash separated, lowercase, with no leading slash.
package pathkey

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

func lower(s string) string {
	c := lowerPool.Get().(*cases.Caser)
	defer lowerPool.Put(c)
	c.Reset()
	return c.String(s)
}

// Relative returns the normalized form of full relative to root.
func Relative(root, full string) (string, error) {
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return "", fmt.Errorf("relative path of %q: %w", full, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes root %q", full, root)
	}
	return canonical(filepath.ToSlash(rel)), nil
}

// Declared normalizes a path as written by an author inside a script or
// manifest. Backslashes are treated as separators.
func Declared(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"`)
	return canonical(value)
}

func canonical(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" {
		return ""
	}
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	return lower(p)
}

// Ext returns the lowercase extension of p without the leading dot.
func Ext(p string) string {
	ext := path.Ext(strings.ReplaceAll(p, `\`, "/"))
	if ext == "" {
		return ""
	}
	return lower(ext[1:])
}

// HasExt reports whether p carries ext, ignoring case and a leading dot on ext.
func HasExt(p, ext string) bool {
	return Ext(p) == CleanExt(ext)
}

// CleanExt lowercases an extension and strips a leading dot.
func CleanExt(ext string) string {
	return lower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
