package diff

import (
	"strings"
	"testing"
	"time"

	"crate/internal/model"
)

func sampleChanges() Changes {
	return Changes{
		Added: []model.Playlist{{
			ID: "p9", Name: "Fresh",
			Tracks: []model.Track{{Name: "Song C", Artist: "Artist Z"}},
		}},
		Removed: []model.Playlist{{ID: "p2", Name: "Gone"}},
		Changed: []PlaylistChange{{
			ID: "p1", Name: "New Name", OldName: "Old Name",
			AddedTracks:   []model.TrackKey{{Name: "Song B", Artist: "Artist Y"}},
			RemovedTracks: []model.TrackKey{{Name: "Song A", Artist: model.UnknownArtist}},
		}},
	}
}

func TestDescribeSectionsInOrder(t *testing.T) {
	text := Describe(sampleChanges())

	wantInOrder := []string{
		"Summary of Changes:",
		"Added playlists:",
		"+ Fresh",
		"Removed playlists:",
		"- Gone",
		"Changed playlists:",
		"~ Old Name → New Name",
		"Tracks in added playlist Fresh:",
		"+ Song C by Artist Z",
		"Track changes in modified playlists:",
		"New Name:",
		"Added tracks:",
		"+ Song B by Artist Y",
		"Removed tracks:",
		"- Song A by " + model.UnknownArtist,
	}

	pos := 0
	for _, want := range wantInOrder {
		idx := strings.Index(text[pos:], want)
		if idx < 0 {
			t.Fatalf("missing or out-of-order %q in:\n%s", want, text)
		}
		pos += idx + len(want)
	}
}

func TestDescribeOmitsEmptySections(t *testing.T) {
	text := Describe(Changes{Added: []model.Playlist{{ID: "p1", Name: "Only"}}})

	if strings.Contains(text, "Removed playlists") || strings.Contains(text, "Changed playlists") {
		t.Fatalf("empty sections should be omitted:\n%s", text)
	}
}

func TestDescribeUnrenamedPlaylistShowsSingleName(t *testing.T) {
	text := Describe(Changes{Changed: []PlaylistChange{{ID: "p1", Name: "Same", OldName: "Same"}}})
	if !strings.Contains(text, "~ Same\n") || strings.Contains(text, "→") {
		t.Fatalf("unexpected rename rendering:\n%s", text)
	}
}

func TestCommitMessage(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	msg := CommitMessage(sampleChanges(), now)

	if !strings.HasPrefix(msg, "Archive 2026-08-25_10-30-00\n\n") {
		t.Fatalf("unexpected subject: %q", msg)
	}
	if !strings.Contains(msg, "Summary of Changes:") {
		t.Fatalf("body missing changelog:\n%s", msg)
	}
}

func TestDescribeIsDeterministic(t *testing.T) {
	changes := sampleChanges()
	if Describe(changes) != Describe(changes) {
		t.Fatalf("narration should be deterministic")
	}
}
