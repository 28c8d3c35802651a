package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMusic(); err != nil {
		return err
	}
	if err := c.validateReslist(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"history.keep_runs": c.History.KeepRuns,
		"watch.debounce_ms": c.Watch.DebounceMS,
	}); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMusic() error {
	if strings.TrimSpace(c.Music.Extension) == "" {
		return errors.New("music.extension must be set")
	}
	if strings.ContainsAny(c.Music.Extension, `/\. `) {
		return fmt.Errorf("music.extension %q must be a bare extension such as mp3", c.Music.Extension)
	}
	for _, track := range c.Music.FallbackPlaylist {
		if strings.Contains(track, `"`) {
			return fmt.Errorf("music.fallback_playlist entry %q must not contain quotes", track)
		}
	}
	return nil
}

func (c *Config) validateReslist() error {
	if len(c.Reslist.DisallowedExtensions) == 0 {
		return errors.New("reslist.disallowed_extensions must not be empty")
	}
	for _, required := range []string{"bsp", "res"} {
		if !slices.Contains(c.Reslist.DisallowedExtensions, required) {
			return fmt.Errorf("reslist.disallowed_extensions must include %q", required)
		}
	}
	if slices.Contains(c.Reslist.DisallowedExtensions, c.Music.Extension) {
		return fmt.Errorf("reslist.disallowed_extensions must not include the music extension %q", c.Music.Extension)
	}
	if strings.ContainsAny(c.Reslist.IgnoreFile, `/\`) {
		return errors.New("reslist.ignore_file must be a file name, not a path")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
