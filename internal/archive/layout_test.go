package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crate/internal/logging"
	"crate/internal/model"
)

func testLibrary() model.Library {
	return model.Library{
		"p1": {
			ID: "p1", Name: "Road Trip", Owner: "Alice", SnapshotID: "v1",
			TrackCount: 1, TotalSeconds: 201,
			Tracks: []model.Track{{Name: "Song A", Artist: "Artist X", ID: "t1", LengthSeconds: 201}},
		},
		"p2": {
			ID: "p2", Name: "Focus", Owner: "Alice", SnapshotID: "v3",
			Tracks: []model.Track{},
		},
	}
}

func TestWriteAndReadIndex(t *testing.T) {
	store := NewStore(t.TempDir(), logging.NewNop())
	lib := testLibrary()

	if err := store.WriteIndex(lib); err != nil {
		t.Fatalf("write index: %v", err)
	}

	got, err := store.ReadIndex()
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(got))
	}
	p1 := got["p1"]
	if p1.SnapshotID != "v1" || p1.TrackCount != 1 || p1.TotalSeconds != 201 {
		t.Fatalf("unexpected p1: %+v", p1)
	}
	if p1.Tracks != nil {
		t.Fatalf("index must not carry tracks, got %v", p1.Tracks)
	}
}

func TestIndexIsIDAscending(t *testing.T) {
	store := NewStore(t.TempDir(), logging.NewNop())
	lib := model.Library{
		"zz": {ID: "zz", Name: "Last"},
		"aa": {ID: "aa", Name: "First"},
	}
	if err := store.WriteIndex(lib); err != nil {
		t.Fatalf("write index: %v", err)
	}

	data, err := os.ReadFile(store.MetadataPath())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	content := string(data)
	idxAA := strings.Index(content, `"aa"`)
	idxZZ := strings.Index(content, `"zz"`)
	if idxAA < 0 || idxZZ < 0 || idxZZ < idxAA {
		t.Fatalf("index not id-ascending:\n%s", data)
	}
}

func TestSnapshotIndexDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, logging.NewNop())

	if got := store.SnapshotIndex(); len(got) != 0 {
		t.Fatalf("missing index should yield empty library, got %v", got)
	}

	if err := os.WriteFile(store.MetadataPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt index: %v", err)
	}
	if got := store.SnapshotIndex(); len(got) != 0 {
		t.Fatalf("corrupt index should yield empty library, got %v", got)
	}
}

func TestWriteTracksClearsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, logging.NewNop())
	lib := testLibrary()

	playlistsDir := filepath.Join(dir, PlaylistsDirName)
	if err := os.MkdirAll(playlistsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(playlistsDir, "Removed Playlist.json")
	if err := os.WriteFile(stale, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}

	if err := store.WriteTracks(lib); err != nil {
		t.Fatalf("write tracks: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale playlist file should have been removed")
	}

	tracks, err := store.ReadTracks(lib, "p1")
	if err != nil {
		t.Fatalf("read tracks: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Name != "Song A" {
		t.Fatalf("unexpected tracks: %+v", tracks)
	}

	empty, err := store.ReadTracks(lib, "p2")
	if err != nil {
		t.Fatalf("read empty tracks: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty track list, got %+v", empty)
	}
}

func TestFileNamesSanitizeAndDisambiguate(t *testing.T) {
	lib := model.Library{
		"p1": {ID: "p1", Name: "AC/DC Hits"},
		"p2": {ID: "p2", Name: "AC_DC Hits"},
		"p3": {ID: "p3", Name: "Plain"},
	}

	names := FileNames(lib)
	if names["p3"] != "Plain.json" {
		t.Fatalf("singleton should keep its name, got %q", names["p3"])
	}
	if names["p1"] != "AC_DC Hits--p1.json" || names["p2"] != "AC_DC Hits--p2.json" {
		t.Fatalf("colliding names should carry id suffixes, got %q and %q", names["p1"], names["p2"])
	}
}

func TestTrackFilePath(t *testing.T) {
	lib := model.Library{"p1": {ID: "p1", Name: "Road Trip"}}
	path, ok := TrackFilePath(lib, "p1")
	if !ok || path != "playlists/Road Trip.json" {
		t.Fatalf("unexpected path: %q ok=%v", path, ok)
	}
	if _, ok := TrackFilePath(lib, "missing"); ok {
		t.Fatalf("unknown playlist should not resolve")
	}
}
