package model

import (
	"sort"
	"strings"
)

// UnknownArtist is the display value used when a track carries no usable
// artist names.
const UnknownArtist = "Unknown Artist"

// Track is a single entry in a playlist. ID may be empty for local or
// unavailable tracks, so diffing identifies tracks by (Name, Artist) instead.
type Track struct {
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	ID            string `json:"id"`
	AddedAt       string `json:"added_at"`
	AddedBy       string `json:"added_by"`
	LengthSeconds int64  `json:"length_seconds"`
}

// Key returns the identity used for track-level diffing.
func (t Track) Key() TrackKey {
	return TrackKey{Name: t.Name, Artist: t.Artist}
}

// String renders the track the way changelogs display it.
func (t Track) String() string {
	return t.Name + " by " + t.Artist
}

// TrackKey identifies a track by name and artist display string. Track IDs
// are not part of the key: they can be absent, and duplicate tracks in a
// playlist may carry instance-specific IDs.
type TrackKey struct {
	Name   string
	Artist string
}

// String renders the key the way changelogs display tracks.
func (k TrackKey) String() string {
	return k.Name + " by " + k.Artist
}

// Playlist is one remote collection. SnapshotID is the opaque revision token
// the remote service changes whenever membership or ordering changes; it is
// the reuse key for incremental captures.
type Playlist struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Owner        string  `json:"owner"`
	SnapshotID   string  `json:"snapshot_id"`
	TrackCount   int     `json:"num_songs"`
	TotalSeconds int64   `json:"total_length_seconds"`
	Tracks       []Track `json:"-"`
}

// Library is the full set of playlists visible to one capture, keyed by
// playlist ID. IDs are unique; persistence iterates in ascending-ID order.
type Library map[string]Playlist

// SortedByID returns the playlists in ascending-ID order for deterministic
// file output and commit messages.
func (l Library) SortedByID() []Playlist {
	out := make([]Playlist, 0, len(l))
	for _, p := range l {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the set of playlist IDs.
func (l Library) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(l))
	for id := range l {
		ids[id] = struct{}{}
	}
	return ids
}

// ArtistNames joins artist names with commas, skipping empties, and falls
// back to UnknownArtist when nothing usable remains.
func ArtistNames(names []string) string {
	kept := names[:0:0]
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return UnknownArtist
	}
	return strings.Join(kept, ", ")
}
