package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config to report exists=false")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Git.Branch != "main" {
		t.Fatalf("default branch = %q, want main", cfg.Git.Branch)
	}
	if !cfg.Exclusions.PlatformOwned {
		t.Fatalf("platform-owned exclusion should default to true")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
archive_dir = "` + filepath.Join(dir, "archive") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[spotify]
base_url = "https://api.example.test/v1/"

[exclusions]
names = ["Discover Weekly"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatalf("expected config file to be found")
	}
	if cfg.Spotify.BaseURL != "https://api.example.test/v1" {
		t.Fatalf("base url not trimmed: %q", cfg.Spotify.BaseURL)
	}
	if len(cfg.Exclusions.Names) != 1 || cfg.Exclusions.Names[0] != "Discover Weekly" {
		t.Fatalf("unexpected exclusions: %v", cfg.Exclusions.Names)
	}
	if !filepath.IsAbs(cfg.Paths.ArchiveDir) {
		t.Fatalf("archive dir should be absolute: %q", cfg.Paths.ArchiveDir)
	}
}

func TestValidateRejectsConflictingRemotes(t *testing.T) {
	cfg := Default()
	cfg.Git.RemoteURL = "https://example.test/archive.git"
	cfg.GitHub.Enabled = true

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for log format")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatalf("sample config should exist")
	}
	if cfg.Spotify.BaseURL != "https://api.spotify.com/v1" {
		t.Fatalf("unexpected sample base url: %q", cfg.Spotify.BaseURL)
	}
}
