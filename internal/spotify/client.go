package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const apiBaseURL = "https://api.spotify.com/v1"

// Playlist is the subset of Spotify's playlist object the finder needs.
type Playlist struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// URL returns the playlist's web URL, synthesizing one from the ID when the
// external URL is missing.
func (p Playlist) URL() string {
	if p.ExternalURLs.Spotify != "" {
		return p.ExternalURLs.Spotify
	}
	return "https://open.spotify.com/playlist/" + p.ID
}

// Track is the subset of Spotify's track object the finder needs.
type Track struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// URL returns the track's web URL.
func (t Track) URL() string {
	if t.ExternalURLs.Spotify != "" {
		return t.ExternalURLs.Spotify
	}
	return "https://open.spotify.com/track/" + t.ID
}

// ArtistNames joins the track's artist names.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Client calls the Spotify Web API.
type Client struct {
	auth       *AuthClient
	baseURL    string
	market     string
	httpClient *http.Client
}

// NewClient creates a Client. market defaults to "US".
func NewClient(auth *AuthClient, market string) *Client {
	if market == "" {
		market = "US"
	}
	return &Client{
		auth:       auth,
		baseURL:    apiBaseURL,
		market:     market,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) search(ctx context.Context, query, kind string, limit int, out any) error {
	token, err := c.auth.AccessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("type", kind)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("market", c.market)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body := strings.TrimSpace(string(raw))
		if len(body) > 300 {
			body = body[:300]
		}
		return fmt.Errorf("search failed: HTTP %d: %s", resp.StatusCode, body)
	}
	return json.Unmarshal(raw, out)
}

// SearchPlaylists returns playlists matching the query. Spotify sometimes
// pads results with nulls; those are dropped.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]Playlist, error) {
	if limit <= 0 {
		limit = 10
	}
	var parsed struct {
		Playlists struct {
			Items []*Playlist `json:"items"`
		} `json:"playlists"`
	}
	if err := c.search(ctx, query, "playlist", limit, &parsed); err != nil {
		return nil, err
	}
	out := make([]Playlist, 0, len(parsed.Playlists.Items))
	for _, p := range parsed.Playlists.Items {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// SearchTracks returns tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 20
	}
	var parsed struct {
		Tracks struct {
			Items []*Track `json:"items"`
		} `json:"tracks"`
	}
	if err := c.search(ctx, query, "track", limit, &parsed); err != nil {
		return nil, err
	}
	out := make([]Track, 0, len(parsed.Tracks.Items))
	for _, t := range parsed.Tracks.Items {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}
