package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMusic()
	c.normalizeReslist()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ReleaseRoot) == "" {
		if value, ok := os.LookupEnv("MAPASSIST_RELEASE_ROOT"); ok {
			c.Paths.ReleaseRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.ReleaseRoot, err = expandPath(strings.TrimSpace(c.Paths.ReleaseRoot)); err != nil {
		return fmt.Errorf("paths.release_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.InstallRoot) == "" {
		if value, ok := os.LookupEnv("MAPASSIST_INSTALL_ROOT"); ok {
			c.Paths.InstallRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.InstallRoot, err = expandPath(strings.TrimSpace(c.Paths.InstallRoot)); err != nil {
		return fmt.Errorf("paths.install_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMusic() {
	c.Music.Extension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Music.Extension), "."))
	if c.Music.Extension == "" {
		c.Music.Extension = defaultMusicExtension
	}
	c.Music.FallbackPlaylist = cleanList(c.Music.FallbackPlaylist, false)
}

func (c *Config) normalizeReslist() {
	exts := make([]string, 0, len(c.Reslist.DisallowedExtensions))
	for _, ext := range c.Reslist.DisallowedExtensions {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
	c.Reslist.DisallowedExtensions = cleanList(exts, true)
	c.Reslist.Ignore = cleanList(c.Reslist.Ignore, true)
	c.Reslist.IgnoreFile = strings.TrimSpace(c.Reslist.IgnoreFile)
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

// DetectInstallRoot returns the first well-known install location that
// exists, or an empty string.
func DetectInstallRoot() string {
	for _, candidate := range installCandidates {
		expanded, err := expandPath(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(expanded); err == nil && info.IsDir() {
			return expanded
		}
	}
	return ""
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
