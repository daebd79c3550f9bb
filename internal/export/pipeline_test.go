package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"

	"crate/internal/archive"
	"crate/internal/gitrepo"
	"crate/internal/logging"
	"crate/internal/model"
	"crate/internal/spotify"
)

func newTestRunner(t *testing.T, service spotify.Service) (*Runner, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "archive")

	repo, err := gitrepo.NewManager(gitrepo.Options{
		Path:        dir,
		Branch:      "main",
		AuthorName:  "Crate",
		AuthorEmail: "crate@localhost",
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	runner := NewRunner(RunnerOptions{
		Service: service,
		Store:   archive.NewStore(dir, logging.NewNop()),
		Repo:    repo,
	}, logging.NewNop())
	runner.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	return runner, dir
}

func headMessage(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("head commit: %v", err)
	}
	return commit.Message
}

func TestRunCapturesAndCommits(t *testing.T) {
	service := &fakeService{
		playlistPages: map[string]spotify.PlaylistPage{
			"": {Playlists: []spotify.PlaylistSummary{
				{ID: "p1", Name: "Morning Mix", OwnerID: "alice", OwnerName: "Alice", SnapshotID: "s1"},
			}},
		},
		trackPages: map[string]map[string]spotify.TrackPage{
			"p1": singleTrackPage(model.Track{Name: "Opener", Artist: "The Band", LengthSeconds: 180}),
		},
	}
	runner, dir := newTestRunner(t, service)

	var messages []string
	result, err := runner.Run(context.Background(), func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Committed || result.Playlists != 1 || result.HeadCommit == "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	want := []string{
		"Fetching playlists from Spotify...",
		"Fetching playlist: Morning Mix",
		"Saving playlist metadata file",
		"Saving playlist files",
		"Committing changes",
	}
	if len(messages) != len(want) {
		t.Fatalf("unexpected messages: %v", messages)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, messages[i], want[i])
		}
	}

	message := headMessage(t, dir)
	if !strings.HasPrefix(message, "Archive 2026-08-25_12-00-00\n\nSummary of Changes:\n") {
		t.Fatalf("unexpected commit message:\n%s", message)
	}
	if !strings.Contains(message, "+ Morning Mix") {
		t.Fatalf("added playlist missing from message:\n%s", message)
	}
	if !strings.Contains(message, "+ Opener by The Band") {
		t.Fatalf("added tracks missing from message:\n%s", message)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	service := &fakeService{
		playlistPages: map[string]spotify.PlaylistPage{
			"": {Playlists: []spotify.PlaylistSummary{
				{ID: "p1", Name: "Morning Mix", OwnerID: "alice", SnapshotID: "s1"},
			}},
		},
		trackPages: map[string]map[string]spotify.TrackPage{
			"p1": singleTrackPage(model.Track{Name: "Opener", Artist: "The Band"}),
		},
	}
	runner, _ := newTestRunner(t, service)
	ctx := context.Background()

	first, err := runner.Run(ctx, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	var messages []string
	second, err := runner.Run(ctx, func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Committed {
		t.Fatalf("unchanged library must not commit")
	}
	if second.HeadCommit != first.HeadCommit {
		t.Fatalf("second run moved HEAD")
	}
	if messages[len(messages)-1] != "No changes to commit" {
		t.Fatalf("unexpected messages: %v", messages)
	}
	for _, msg := range messages {
		if msg == "Fetching playlist: Morning Mix" {
			t.Fatalf("matching snapshot token must reuse the cache: %v", messages)
		}
	}
	if service.trackCalls["p1"] != 1 {
		t.Fatalf("tracks fetched %d times, want once", service.trackCalls["p1"])
	}
}

func TestRunNarratesTrackChanges(t *testing.T) {
	service := &fakeService{
		playlistPages: map[string]spotify.PlaylistPage{
			"": {Playlists: []spotify.PlaylistSummary{
				{ID: "p1", Name: "Morning Mix", OwnerID: "alice", SnapshotID: "s1"},
			}},
		},
		trackPages: map[string]map[string]spotify.TrackPage{
			"p1": singleTrackPage(
				model.Track{Name: "Opener", Artist: "The Band"},
				model.Track{Name: "Closer", Artist: "The Band"},
			),
		},
	}
	runner, dir := newTestRunner(t, service)
	ctx := context.Background()

	if _, err := runner.Run(ctx, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Same playlist, new snapshot: one track swapped for another.
	service.playlistPages[""] = spotify.PlaylistPage{Playlists: []spotify.PlaylistSummary{
		{ID: "p1", Name: "Morning Mix", OwnerID: "alice", SnapshotID: "s2"},
	}}
	service.trackPages["p1"] = singleTrackPage(
		model.Track{Name: "Opener", Artist: "The Band"},
		model.Track{Name: "Encore", Artist: "The Band"},
	)

	result, err := runner.Run(ctx, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !result.Committed {
		t.Fatalf("snapshot change must commit")
	}

	message := headMessage(t, dir)
	if !strings.Contains(message, "~ Morning Mix") {
		t.Fatalf("changed playlist missing:\n%s", message)
	}
	if !strings.Contains(message, "+ Encore by The Band") || !strings.Contains(message, "- Closer by The Band") {
		t.Fatalf("track changes missing:\n%s", message)
	}
}

func TestRunEmitsErrorOnFailure(t *testing.T) {
	service := &fakeService{} // no pages configured: listing fails
	runner, _ := newTestRunner(t, service)

	var messages []string
	_, err := runner.Run(context.Background(), func(msg string) { messages = append(messages, msg) })
	if err == nil {
		t.Fatalf("expected listing failure")
	}
	last := messages[len(messages)-1]
	if !strings.HasPrefix(last, "Error: ") {
		t.Fatalf("failure must be announced, got %v", messages)
	}
}
