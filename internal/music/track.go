package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/lavalink"
)

// Track is one playable item. Encoded is the node's opaque identifier.
type Track struct {
	Title      string        `json:"title"`
	Author     string        `json:"author"`
	URI        string        `json:"uri"`
	ArtworkURL string        `json:"artworkUrl,omitempty"`
	Encoded    string        `json:"-"`
	Length     time.Duration `json:"length"`
}

// TrackFromLavalink converts a node track.
func TrackFromLavalink(t lavalink.Track) Track {
	return Track{
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		URI:        t.Info.URI,
		ArtworkURL: t.Info.ArtworkURL,
		Encoded:    t.Encoded,
		Length:     t.Info.Duration(),
	}
}

// ErrNoResults is returned when a search yields nothing playable.
var ErrNoResults = errors.New("no se encontraron resultados")

// SearchError wraps a load failure reported by the node.
type SearchError struct {
	Query   string
	Message string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("error buscando %q: %s", e.Query, e.Message)
}

// Searcher loads tracks from the audio node.
type Searcher interface {
	LoadTracks(ctx context.Context, identifier string) (*lavalink.LoadResult, error)
}

var linkMarkers = []string{
	"youtube.com", "youtu.be", "soundcloud.com", "spotify.com", "deezer.com",
	"http://", "https://",
}

// ResolveQuery sends links verbatim and prefixes free text with the search platform.
func ResolveQuery(query, searchPrefix string) string {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)
	for _, marker := range linkMarkers {
		if strings.Contains(lower, marker) {
			return query
		}
	}
	if searchPrefix == "" {
		searchPrefix = "ytsearch"
	}
	return strings.TrimSuffix(searchPrefix, ":") + ":" + query
}

// Search resolves query into its first playable track.
func Search(ctx context.Context, s Searcher, query, searchPrefix string) (Track, error) {
	result, err := s.LoadTracks(ctx, ResolveQuery(query, searchPrefix))
	if err != nil {
		return Track{}, &SearchError{Query: query, Message: err.Error()}
	}

	switch result.LoadType {
	case lavalink.LoadTypeError:
		msg := "error desconocido"
		if result.Exception != nil {
			msg = result.Exception.Message
		}
		return Track{}, &SearchError{Query: query, Message: msg}
	case lavalink.LoadTypeEmpty:
		return Track{}, ErrNoResults
	}
	if len(result.Tracks) == 0 {
		return Track{}, ErrNoResults
	}
	return TrackFromLavalink(result.Tracks[0]), nil
}

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
