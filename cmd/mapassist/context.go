package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mapassist/internal/config"
	"mapassist/internal/history"
	"mapassist/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	jsonOutput *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbose, jsonOutput *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) isVerbose() bool {
	return c.verbose != nil && *c.verbose
}

func (c *commandContext) wantsJSON() bool {
	return c.jsonOutput != nil && *c.jsonOutput
}

// ensureLogger builds the run logger. Without a log file, records go to the
// command's stderr so they stay apart from rendered output.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		if strings.TrimSpace(cfg.Logging.File) != "" {
			c.logger, c.loggerErr = logging.NewFromConfig(cfg, c.isVerbose())
			return
		}
		level := cfg.Logging.Level
		if c.isVerbose() {
			level = "debug"
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			Writer: cmd.ErrOrStderr(),
		})
	})
	return c.logger, c.loggerErr
}

// openHistory opens the run ledger, or returns nil when it is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.HistoryPath())
}

// resolveRoot picks the first non-empty candidate, falling back to the
// working directory, and expands it.
func resolveRoot(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) != "" {
			return config.ExpandPath(strings.TrimSpace(candidate))
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return wd, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
