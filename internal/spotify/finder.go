package spotify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/assistkit/assistkit/internal/status"
)

const (
	maxQueries        = 10
	enoughPlaylists   = 8
	trackFallbackAt   = 3
	playlistsPerQuery = 5
)

// Result is what a vibe search produced.
type Result struct {
	Context   Context
	Playlists []Playlist
	Tracks    []Track
}

// Found reports whether anything matched.
func (r Result) Found() bool { return len(r.Playlists) > 0 || len(r.Tracks) > 0 }

// Finder searches Spotify for playlists matching an analyzed context,
// falling back to track suggestions when playlists are scarce.
type Finder struct {
	client   *Client
	analyzer *Analyzer
	emitter  status.Emitter
}

// NewFinder creates a Finder.
func NewFinder(client *Client, analyzer *Analyzer, emitter status.Emitter) *Finder {
	if emitter == nil {
		emitter = status.Nop
	}
	return &Finder{client: client, analyzer: analyzer, emitter: emitter}
}

// Find analyzes text and searches for matching playlists and tracks.
func (f *Finder) Find(ctx context.Context, text string) (Result, error) {
	status.Info(f.emitter, "Extracting mood and context...")
	musical := f.analyzer.Analyze(ctx, text)

	status.Info(f.emitter, "Searching for matching playlists...")
	queries := buildQueries(musical)

	var playlists []Playlist
	seen := make(map[string]bool)
	for _, q := range queries {
		found, err := f.client.SearchPlaylists(ctx, q, playlistsPerQuery)
		if err != nil {
			// A single bad query must not sink the whole search, except for
			// auth failures which will fail every query the same way.
			if strings.Contains(err.Error(), "credentials") ||
				strings.Contains(err.Error(), "authentication failed") {
				return Result{}, err
			}
			continue
		}
		for _, p := range found {
			if p.ID != "" && !seen[p.ID] {
				playlists = append(playlists, p)
				seen[p.ID] = true
			}
		}
		if len(playlists) >= enoughPlaylists {
			break
		}
	}

	var tracks []Track
	if len(playlists) < trackFallbackAt {
		for _, q := range queries[:min(3, len(queries))] {
			found, err := f.client.SearchTracks(ctx, q, 10)
			if err != nil {
				continue
			}
			tracks = append(tracks, found[:min(5, len(found))]...)
		}
	}

	result := Result{Context: musical, Playlists: playlists, Tracks: tracks}
	switch {
	case len(playlists) > 0:
		status.Done(f.emitter, "Found %d matching playlist(s).", len(playlists))
	case len(tracks) > 0:
		status.Done(f.emitter, "Found %d matching tracks.", len(tracks))
	default:
		status.Done(f.emitter, "No matching playlists or tracks found.")
	}
	return result, nil
}

// buildQueries constructs search queries from most to least specific.
func buildQueries(c Context) []string {
	var queries []string
	moody := c.Mood != "" && c.Mood != "neutral"

	var full []string
	if c.Activity != "" {
		full = append(full, c.Activity)
	}
	if c.TimeContext != "" {
		full = append(full, c.TimeContext)
	}
	if c.Weather != "" {
		full = append(full, c.Weather)
	}
	if moody {
		full = append(full, c.Mood)
	}
	if len(full) >= 2 {
		queries = append(queries, strings.Join(full, " "))
	}

	if c.Activity != "" && c.TimeContext != "" && moody {
		queries = append(queries, fmt.Sprintf("%s %s %s", c.Activity, c.TimeContext, c.Mood))
	}
	if c.Activity != "" && c.Weather != "" {
		queries = append(queries, fmt.Sprintf("%s %s", c.Activity, c.Weather))
	}
	if c.TimeContext != "" && c.Weather != "" && moody {
		queries = append(queries, fmt.Sprintf("%s %s %s", c.TimeContext, c.Weather, c.Mood))
	}
	if c.Activity != "" && moody {
		queries = append(queries, fmt.Sprintf("%s %s", c.Activity, c.Mood))
	}
	if c.Weather != "" && moody {
		queries = append(queries, fmt.Sprintf("%s %s", c.Weather, c.Mood))
	}

	switch {
	case c.Era != "" && len(c.Genres) > 0:
		queries = append(queries, fmt.Sprintf("%s %s %s", c.Mood, c.Era, c.Genres[0]))
	case len(c.Genres) > 0:
		queries = append(queries, fmt.Sprintf("%s %s", c.Mood, c.Genres[0]))
	case c.Era != "":
		queries = append(queries, fmt.Sprintf("%s %s", c.Mood, c.Era))
	}

	// Longer search terms carry more context; try them first.
	terms := append([]string(nil), c.SearchTerms...)
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	if len(terms) > 5 {
		terms = terms[:5]
	}
	queries = append(queries, terms...)

	if moody {
		queries = append(queries, c.Mood+" vibe", c.Mood+" music")
	}

	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}

// Markdown renders the result for chat display.
func (r Result) Markdown() string {
	var sb strings.Builder

	if len(r.Playlists) > 0 {
		top := r.Playlists
		if len(top) > 5 {
			top = top[:5]
		}
		fmt.Fprintf(&sb, "🎵 **Found %d playlist(s) for your vibe:**\n", len(top))
		for i, p := range top {
			fmt.Fprintf(&sb, "\n**%d. %s**\nLink: %s\n👤 By: %s | 🎵 %d tracks\n",
				i+1, p.Name, p.URL(), p.Owner.DisplayName, p.Tracks.Total)
			if p.Description != "" {
				desc := p.Description
				if len(desc) > 100 {
					desc = desc[:100] + "..."
				}
				fmt.Fprintf(&sb, "📝 %s\n", desc)
			}
		}
		if len(r.Tracks) > 0 {
			sb.WriteString("\n🎶 **Track Suggestions:**\n")
			r.writeTracks(&sb, 10)
		}
	} else if len(r.Tracks) > 0 {
		fmt.Fprintf(&sb, "🎶 **Found %d track(s) matching your vibe:**\n", len(r.Tracks))
		r.writeTracks(&sb, 15)
	} else {
		genres := strings.Join(r.Context.Genres, ", ")
		if genres == "" {
			genres = "various genres"
		}
		fmt.Fprintf(&sb, "❌ No playlists or tracks found matching your vibe.\n\n"+
			"💡 **Try:**\n"+
			"- Being more specific (e.g., 'jazz for cooking')\n"+
			"- Using different keywords\n"+
			"- Describing the mood or activity more clearly\n\n"+
			"*Analyzed: %s mood, %s*", r.Context.Mood, genres)
		return sb.String()
	}

	if summary := r.Context.Summary(); summary != "" {
		fmt.Fprintf(&sb, "\n*Context: %s*\n", summary)
	}
	return sb.String()
}

func (r Result) writeTracks(sb *strings.Builder, limit int) {
	tracks := r.Tracks
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	for i, t := range tracks {
		fmt.Fprintf(sb, "%d. **%s** by %s\n   🔗 %s\n", i+1, t.Name, t.ArtistNames(), t.URL())
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
