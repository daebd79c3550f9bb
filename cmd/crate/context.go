package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"crate/internal/config"
	"crate/internal/logging"
	"crate/internal/spotify"
)

type commandContext struct {
	configFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// newService is swappable so command tests can run against a fake.
	newService func(cfg *config.Config, token string) (spotify.Service, error)
}

func newCommandContext() *commandContext {
	return &commandContext{
		newService: func(cfg *config.Config, token string) (spotify.Service, error) {
			var opts []spotify.Option
			if cfg.Spotify.RequestTimeout > 0 {
				opts = append(opts, spotify.WithHTTPClient(&http.Client{
					Timeout: time.Duration(cfg.Spotify.RequestTimeout) * time.Second,
				}))
			}
			return spotify.New(cfg.Spotify.BaseURL, token, opts...)
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger opens the structured log file. Progress goes to stdout, so the
// slog stream stays out of the way in the log directory.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	path := filepath.Join(cfg.Paths.LogDir, "crate.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: file,
	})
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return logger, file, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
