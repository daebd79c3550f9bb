package diff

import (
	"sort"

	"crate/internal/model"
)

// Source is one side of a comparison: a metadata index plus a loader for a
// playlist's track list. The loader may fail; Compute substitutes an empty
// track list, so a vanished previous-side file reads as "everything added".
type Source struct {
	Index  model.Library
	Tracks func(playlistID string) ([]model.Track, error)
}

// PlaylistChange describes one playlist present on both sides whose snapshot
// token differs.
type PlaylistChange struct {
	ID            string
	Name          string
	OldName       string
	AddedTracks   []model.TrackKey
	RemovedTracks []model.TrackKey
}

// Renamed reports whether the playlist name itself changed.
func (c PlaylistChange) Renamed() bool {
	return c.Name != c.OldName
}

// Changes is the structured difference between two captures. Playlists are
// ordered by ascending ID in every field; track keys are ordered by
// (name, artist) so narration is deterministic.
type Changes struct {
	Added   []model.Playlist
	Removed []model.Playlist
	Changed []PlaylistChange
}

// Empty reports whether the two sides were identical.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Compute diffs the previous capture against the current one. Playlist-level
// membership is a symmetric set difference over IDs; a playlist present on
// both sides counts as changed when its snapshot token differs, and its
// track lists are then compared as sets of (name, artist) keys. Track IDs do
// not participate: they may be absent or instance-specific.
func Compute(previous, current Source) Changes {
	var changes Changes

	for _, playlist := range current.Index.SortedByID() {
		if _, ok := previous.Index[playlist.ID]; ok {
			continue
		}
		playlist.Tracks = loadTracks(current, playlist.ID)
		changes.Added = append(changes.Added, playlist)
	}

	for _, playlist := range previous.Index.SortedByID() {
		if _, ok := current.Index[playlist.ID]; ok {
			continue
		}
		changes.Removed = append(changes.Removed, playlist)
	}

	for _, playlist := range current.Index.SortedByID() {
		before, ok := previous.Index[playlist.ID]
		if !ok || before.SnapshotID == playlist.SnapshotID {
			continue
		}

		currentKeys := trackKeySet(loadTracks(current, playlist.ID))
		previousKeys := trackKeySet(loadTracks(previous, playlist.ID))

		changes.Changed = append(changes.Changed, PlaylistChange{
			ID:            playlist.ID,
			Name:          playlist.Name,
			OldName:       before.Name,
			AddedTracks:   sortedKeyDifference(currentKeys, previousKeys),
			RemovedTracks: sortedKeyDifference(previousKeys, currentKeys),
		})
	}

	return changes
}

func loadTracks(side Source, playlistID string) []model.Track {
	if side.Tracks == nil {
		return nil
	}
	tracks, err := side.Tracks(playlistID)
	if err != nil {
		return nil
	}
	return tracks
}

func trackKeySet(tracks []model.Track) map[model.TrackKey]struct{} {
	keys := make(map[model.TrackKey]struct{}, len(tracks))
	for _, track := range tracks {
		keys[track.Key()] = struct{}{}
	}
	return keys
}

func sortedKeyDifference(from, subtract map[model.TrackKey]struct{}) []model.TrackKey {
	var out []model.TrackKey
	for key := range from {
		if _, ok := subtract[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Artist < out[j].Artist
	})
	return out
}
