package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"crate/internal/logging"
	"crate/internal/model"
)

const (
	// MetadataFilename is the index of every playlist's fields minus tracks,
	// ordered by ascending playlist ID.
	MetadataFilename = "playlists_metadata.json"
	// PlaylistsDirName holds one track file per playlist.
	PlaylistsDirName = "playlists"
)

// Store reads and writes the archive's on-disk representation rooted at dir.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store for the archive working directory.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "archive"),
	}
}

// Dir returns the archive working directory.
func (s *Store) Dir() string {
	return s.dir
}

// MetadataPath returns the absolute path of the metadata index.
func (s *Store) MetadataPath() string {
	return filepath.Join(s.dir, MetadataFilename)
}

func (s *Store) playlistsDir() string {
	return filepath.Join(s.dir, PlaylistsDirName)
}

// WriteIndex persists the metadata index in ascending-ID order. Track lists
// are not serialized here; they live in per-playlist files.
func (s *Store) WriteIndex(lib model.Library) error {
	playlists := lib.SortedByID()
	if playlists == nil {
		playlists = []model.Playlist{}
	}
	data, err := json.MarshalIndent(playlists, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata index: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	if err := os.WriteFile(s.MetadataPath(), data, 0o644); err != nil {
		return fmt.Errorf("write metadata index: %w", err)
	}
	return nil
}

// ReadIndex loads the metadata index as a map keyed by playlist ID. The
// returned playlists carry no tracks. Missing or malformed files are
// reported as errors; callers choose the empty default.
func (s *Store) ReadIndex() (model.Library, error) {
	data, err := os.ReadFile(s.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("read metadata index: %w", err)
	}
	return ParseIndex(data)
}

// SnapshotIndex is the reuse-eligibility view of the archive: the previously
// persisted index, or an empty library when it is missing or unreadable.
// Degrading to empty simply forces a full refetch on the next capture.
func (s *Store) SnapshotIndex() model.Library {
	lib, err := s.ReadIndex()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("metadata index unreadable, treating archive as uncached",
				logging.Error(err))
		}
		return model.Library{}
	}
	return lib
}

// ParseIndex decodes a metadata index payload into a library.
func ParseIndex(data []byte) (model.Library, error) {
	var playlists []model.Playlist
	if err := json.Unmarshal(data, &playlists); err != nil {
		return nil, fmt.Errorf("parse metadata index: %w", err)
	}
	lib := make(model.Library, len(playlists))
	for _, p := range playlists {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		lib[p.ID] = p
	}
	return lib, nil
}

// WriteTracks writes one track file per playlist. All pre-existing regular
// files in the playlists directory are removed first so playlists deleted
// upstream leave no orphaned file; the write is idempotent and self-cleaning.
func (s *Store) WriteTracks(lib model.Library) error {
	dir := s.playlistsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create playlists directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list playlists directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale playlist file: %w", err)
		}
	}

	names := FileNames(lib)
	for _, playlist := range lib.SortedByID() {
		tracks := playlist.Tracks
		if tracks == nil {
			tracks = []model.Track{}
		}
		data, err := json.MarshalIndent(tracks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal tracks for %s: %w", playlist.ID, err)
		}
		if err := os.WriteFile(filepath.Join(dir, names[playlist.ID]), data, 0o644); err != nil {
			return fmt.Errorf("write playlist file for %s: %w", playlist.ID, err)
		}
	}
	return nil
}

// ReadTracks loads a playlist's track file. The playlist must come from the
// same library used to derive filenames, so collisions resolve identically.
func (s *Store) ReadTracks(lib model.Library, playlistID string) ([]model.Track, error) {
	name, ok := FileNames(lib)[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %s not in library", playlistID)
	}
	data, err := os.ReadFile(filepath.Join(s.playlistsDir(), name))
	if err != nil {
		return nil, fmt.Errorf("read playlist file: %w", err)
	}
	return ParseTracks(data)
}

// ParseTracks decodes a track file payload.
func ParseTracks(data []byte) ([]model.Track, error) {
	var tracks []model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("parse playlist file: %w", err)
	}
	return tracks, nil
}

// TrackFilePath returns the archive-relative path of a playlist's track file
// within the given library.
func TrackFilePath(lib model.Library, playlistID string) (string, bool) {
	name, ok := FileNames(lib)[playlistID]
	if !ok {
		return "", false
	}
	return PlaylistsDirName + "/" + name, true
}

// FileNames derives the track filename for every playlist in the library.
// Names are sanitized by replacing path separators with underscores. When two
// distinct playlists sanitize to the same base name, each colliding file is
// disambiguated with an "--<id>" suffix so neither silently overwrites the
// other; the mapping stays deterministic for a given library.
func FileNames(lib model.Library) map[string]string {
	byBase := make(map[string][]string, len(lib))
	for id, playlist := range lib {
		base := sanitizeName(playlist.Name)
		if base == "" {
			base = id
		}
		byBase[base] = append(byBase[base], id)
	}

	names := make(map[string]string, len(lib))
	for base, ids := range byBase {
		if len(ids) == 1 {
			names[ids[0]] = base + ".json"
			continue
		}
		for _, id := range ids {
			names[id] = base + "--" + id + ".json"
		}
	}
	return names
}

func sanitizeName(name string) string {
	replaced := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(replaced)
}
