package config

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir: "~/.local/share/crate/archive",
			LogDir:     "~/.local/share/crate/logs",
		},
		Spotify: Spotify{
			BaseURL:        "https://api.spotify.com/v1",
			TokenEnv:       "SPOTIFY_ACCESS_TOKEN",
			RequestTimeout: 30,
		},
		Exclusions: Exclusions{
			PlatformOwned: true,
		},
		Git: Git{
			RemoteName:  "origin",
			Branch:      "main",
			AuthorName:  "Crate",
			AuthorEmail: "crate@localhost",
		},
		GitHub: GitHub{
			TokenEnv: "GITHUB_TOKEN",
			RepoName: "playlist-archive",
			APIURL:   "https://api.github.com",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
