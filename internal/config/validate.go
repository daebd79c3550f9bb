package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that would otherwise surface as
// confusing failures mid-run.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		problems = append(problems, "paths.archive_dir must not be empty")
	}
	if strings.TrimSpace(c.Spotify.BaseURL) == "" {
		problems = append(problems, "spotify.base_url must not be empty")
	}
	if strings.TrimSpace(c.Spotify.TokenEnv) == "" {
		problems = append(problems, "spotify.token_env must not be empty")
	}
	if c.Spotify.RequestTimeout <= 0 {
		problems = append(problems, "spotify.request_timeout must be positive")
	}
	if strings.TrimSpace(c.Git.Branch) == "" {
		problems = append(problems, "git.branch must not be empty")
	}
	if strings.TrimSpace(c.Git.RemoteName) == "" {
		problems = append(problems, "git.remote_name must not be empty")
	}
	if c.GitHub.Enabled {
		if strings.TrimSpace(c.GitHub.RepoName) == "" {
			problems = append(problems, "github.repo_name must not be empty when github.enabled is true")
		}
		if strings.TrimSpace(c.GitHub.APIURL) == "" {
			problems = append(problems, "github.api_url must not be empty when github.enabled is true")
		}
	}
	if c.GitHub.Enabled && strings.TrimSpace(c.Git.RemoteURL) != "" {
		problems = append(problems, "git.remote_url and github.enabled are mutually exclusive")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
