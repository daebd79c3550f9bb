package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ArchiveDir string `toml:"archive_dir"`
	LogDir     string `toml:"log_dir"`
}

// Spotify contains configuration for the remote playlist service. Token
// acquisition and refresh happen outside crate; the client only needs a
// bearer token, read from the environment variable named here.
type Spotify struct {
	BaseURL        string `toml:"base_url"`
	TokenEnv       string `toml:"token_env"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Exclusions controls which playlists are left out of the archive.
type Exclusions struct {
	PlatformOwned bool     `toml:"platform_owned"`
	Names         []string `toml:"names"`
}

// Git contains configuration for the archive repository.
type Git struct {
	RemoteURL   string `toml:"remote_url"`
	RemoteName  string `toml:"remote_name"`
	Branch      string `toml:"branch"`
	AuthorName  string `toml:"author_name"`
	AuthorEmail string `toml:"author_email"`
}

// GitHub contains configuration for optional remote repository provisioning.
// When enabled, crate ensures a repository named RepoName exists for the
// token's user and pushes the archive there.
type GitHub struct {
	Enabled  bool   `toml:"enabled"`
	TokenEnv string `toml:"token_env"`
	RepoName string `toml:"repo_name"`
	APIURL   string `toml:"api_url"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for crate.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Spotify    Spotify    `toml:"spotify"`
	Exclusions Exclusions `toml:"exclusions"`
	Git        Git        `toml:"git"`
	GitHub     GitHub     `toml:"github"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/crate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file yields
// the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("crate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Spotify.BaseURL = strings.TrimRight(strings.TrimSpace(c.Spotify.BaseURL), "/")
	c.Git.RemoteURL = strings.TrimSpace(c.Git.RemoteURL)
	c.GitHub.APIURL = strings.TrimRight(strings.TrimSpace(c.GitHub.APIURL), "/")
	return nil
}

// EnsureDirectories creates the directories crate needs to run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArchiveDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SpotifyToken reads the configured bearer token from the environment.
func (c *Config) SpotifyToken() string {
	return strings.TrimSpace(os.Getenv(c.Spotify.TokenEnv))
}

// GitHubToken reads the configured provisioning token from the environment.
func (c *Config) GitHubToken() string {
	return strings.TrimSpace(os.Getenv(c.GitHub.TokenEnv))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
