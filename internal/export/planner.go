package export

import (
	"context"
	"fmt"

	"crate/internal/model"
	"crate/internal/spotify"
)

// Sink receives ordered progress messages. The pipeline calls it
// synchronously at each suspension point, so a slow consumer paces the run.
type Sink func(string)

// platformOwnerID marks playlists owned by the Spotify platform account
// (editorial playlists like Discover Weekly's forebears).
const platformOwnerID = "spotify"

// FetchOptions controls which playlists a capture skips.
type FetchOptions struct {
	ExcludePlatformOwned bool
	ExcludeNames         []string
}

func (o FetchOptions) excluded(summary spotify.PlaylistSummary) bool {
	if o.ExcludePlatformOwned && summary.OwnerID == platformOwnerID {
		return true
	}
	for _, name := range o.ExcludeNames {
		if summary.Name == name {
			return true
		}
	}
	return false
}

// TrackReader loads the cached track list for a playlist ID from the prior
// capture's files.
type TrackReader func(playlistID string) ([]model.Track, error)

// FetchLibrary pages through the remote playlist listing exhaustively and
// assembles the current capture. Duplicate IDs are dropped (first occurrence
// wins), excluded playlists are skipped, and a playlist whose snapshot token
// matches the cached index is reused wholesale without refetching its tracks.
// A reuse whose cached track file is unreadable falls back to a full refetch.
func FetchLibrary(ctx context.Context, service spotify.Service, cached model.Library, cachedTracks TrackReader, opts FetchOptions, emit Sink) (model.Library, error) {
	if emit == nil {
		emit = func(string) {}
	}
	emit("Fetching playlists from Spotify...")

	lib := model.Library{}
	seen := make(map[string]struct{})

	cursor := ""
	for {
		page, err := service.ListPlaylists(ctx, cursor)
		if err != nil {
			return nil, err
		}

		for _, summary := range page.Playlists {
			if _, dup := seen[summary.ID]; dup || opts.excluded(summary) {
				continue
			}
			seen[summary.ID] = struct{}{}

			if prior, ok := cached[summary.ID]; ok && prior.SnapshotID == summary.SnapshotID && cachedTracks != nil {
				tracks, err := cachedTracks(summary.ID)
				if err == nil {
					emit(fmt.Sprintf("Unchanged playlist: %s", prior.Name))
					prior.Tracks = tracks
					lib[summary.ID] = prior
					continue
				}
				// Cached file vanished or is corrupt; refetch instead of failing.
			}

			emit(fmt.Sprintf("Fetching playlist: %s", summary.Name))
			playlist, err := fetchPlaylist(ctx, service, summary)
			if err != nil {
				return nil, err
			}
			lib[summary.ID] = playlist
		}

		if page.Next == "" {
			return lib, nil
		}
		cursor = page.Next
	}
}

func fetchPlaylist(ctx context.Context, service spotify.Service, summary spotify.PlaylistSummary) (model.Playlist, error) {
	var (
		tracks  []model.Track
		totalMS int64
	)
	cursor := ""
	for {
		page, err := service.ListPlaylistTracks(ctx, summary.ID, cursor)
		if err != nil {
			return model.Playlist{}, err
		}
		tracks = append(tracks, page.Tracks...)
		totalMS += page.TotalMS
		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	return model.Playlist{
		ID:           summary.ID,
		Name:         summary.Name,
		Owner:        summary.OwnerName,
		SnapshotID:   summary.SnapshotID,
		TrackCount:   len(tracks),
		TotalSeconds: totalMS / 1000,
		Tracks:       tracks,
	}, nil
}
