package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crate/internal/model"
)

// PlaylistSummary is one entry from the playlist listing. It carries the
// snapshot token but no tracks; tracks are fetched separately when needed.
type PlaylistSummary struct {
	ID         string
	Name       string
	OwnerID    string
	OwnerName  string
	SnapshotID string
}

// PlaylistPage is one page of the playlist listing. Next is an opaque cursor;
// empty means the listing is exhausted.
type PlaylistPage struct {
	Playlists []PlaylistSummary
	Next      string
}

// TrackPage is one page of a playlist's tracks, converted to the archive's
// typed model at this boundary. TotalMS sums the raw track durations so the
// caller can derive a playlist total without re-truncating per track.
type TrackPage struct {
	Tracks  []model.Track
	TotalMS int64
	Next    string
}

// Service defines the remote playlist operations the fetch planner consumes.
// Both listings resume from the opaque cursor returned with each page.
type Service interface {
	ListPlaylists(ctx context.Context, cursor string) (PlaylistPage, error)
	ListPlaylistTracks(ctx context.Context, playlistID, cursor string) (TrackPage, error)
}

const defaultPageLimit = 50

// Client provides access to the Spotify Web API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Spotify client. The token is a ready-to-use bearer token;
// acquiring and refreshing it is the caller's concern.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("spotify base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("spotify access token required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type ownerPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistPayload struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	SnapshotID string       `json:"snapshot_id"`
	Owner      ownerPayload `json:"owner"`
}

type playlistListingPayload struct {
	Items []*playlistPayload `json:"items"`
	Next  string             `json:"next"`
}

// ListPlaylists returns one page of the authenticated user's playlists.
// An empty cursor starts the listing from the beginning.
func (c *Client) ListPlaylists(ctx context.Context, cursor string) (PlaylistPage, error) {
	endpoint := cursor
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/me/playlists?%s", c.baseURL, url.Values{"limit": {fmt.Sprint(defaultPageLimit)}}.Encode())
	}

	var payload playlistListingPayload
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return PlaylistPage{}, fmt.Errorf("list playlists: %w", err)
	}

	page := PlaylistPage{Next: payload.Next}
	for _, item := range payload.Items {
		if item == nil || strings.TrimSpace(item.ID) == "" {
			continue
		}
		page.Playlists = append(page.Playlists, PlaylistSummary{
			ID:         item.ID,
			Name:       item.Name,
			OwnerID:    item.Owner.ID,
			OwnerName:  item.Owner.DisplayName,
			SnapshotID: item.SnapshotID,
		})
	}
	return page, nil
}

type artistPayload struct {
	Name string `json:"name"`
}

type trackPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	DurationMS int64           `json:"duration_ms"`
	Artists    []artistPayload `json:"artists"`
}

type trackItemPayload struct {
	AddedAt string        `json:"added_at"`
	AddedBy ownerPayload  `json:"added_by"`
	Track   *trackPayload `json:"track"`
}

type trackListingPayload struct {
	Items []trackItemPayload `json:"items"`
	Next  string             `json:"next"`
}

// ListPlaylistTracks returns one page of a playlist's tracks. Entries whose
// track payload is missing (removed or region-blocked content) are skipped,
// matching the archive's "what the listing shows is what we store" contract.
func (c *Client) ListPlaylistTracks(ctx context.Context, playlistID, cursor string) (TrackPage, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return TrackPage{}, errors.New("playlist id required")
	}

	endpoint := cursor
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/playlists/%s/tracks?%s",
			c.baseURL, url.PathEscape(playlistID), url.Values{"limit": {fmt.Sprint(defaultPageLimit)}}.Encode())
	}

	var payload trackListingPayload
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return TrackPage{}, fmt.Errorf("list tracks for %s: %w", playlistID, err)
	}

	page := TrackPage{Next: payload.Next}
	for _, item := range payload.Items {
		if item.Track == nil {
			continue
		}
		names := make([]string, 0, len(item.Track.Artists))
		for _, artist := range item.Track.Artists {
			names = append(names, artist.Name)
		}
		page.Tracks = append(page.Tracks, model.Track{
			Name:          item.Track.Name,
			Artist:        model.ArtistNames(names),
			ID:            item.Track.ID,
			AddedAt:       item.AddedAt,
			AddedBy:       item.AddedBy.ID,
			LengthSeconds: item.Track.DurationMS / 1000,
		})
		page.TotalMS += item.Track.DurationMS
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify returned %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
