package music

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/lavalink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveQuery(t *testing.T) {
	tests := []struct {
		query  string
		prefix string
		want   string
	}{
		{"never gonna give you up", "ytsearch", "ytsearch:never gonna give you up"},
		{"  lofi  ", "scsearch:", "scsearch:lofi"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "ytsearch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"youtu.be/dQw4w9WgXcQ", "ytsearch", "youtu.be/dQw4w9WgXcQ"},
		{"https://open.spotify.com/track/x", "ytsearch", "https://open.spotify.com/track/x"},
		{"algo", "", "ytsearch:algo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveQuery(tt.query, tt.prefix), tt.query)
	}
}

type fakeSearcher struct {
	identifier string
	result     *lavalink.LoadResult
	err        error
}

func (f *fakeSearcher) LoadTracks(_ context.Context, identifier string) (*lavalink.LoadResult, error) {
	f.identifier = identifier
	return f.result, f.err
}

func TestSearchPicksFirst(t *testing.T) {
	s := &fakeSearcher{result: &lavalink.LoadResult{
		LoadType: lavalink.LoadTypeSearch,
		Tracks: []lavalink.Track{
			{Encoded: "one", Info: lavalink.TrackInfo{Title: "First", Length: 61000}},
			{Encoded: "two", Info: lavalink.TrackInfo{Title: "Second"}},
		},
	}}

	track, err := Search(context.Background(), s, "song", "ytsearch")
	require.NoError(t, err)
	assert.Equal(t, "ytsearch:song", s.identifier)
	assert.Equal(t, "First", track.Title)
	assert.Equal(t, "one", track.Encoded)
	assert.Equal(t, 61*time.Second, track.Length)
}

func TestSearchFailures(t *testing.T) {
	_, err := Search(context.Background(), &fakeSearcher{result: &lavalink.LoadResult{LoadType: lavalink.LoadTypeEmpty}}, "x", "")
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = Search(context.Background(), &fakeSearcher{result: &lavalink.LoadResult{
		LoadType:  lavalink.LoadTypeError,
		Exception: &lavalink.Exception{Message: "video unavailable"},
	}}, "x", "")
	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "video unavailable", se.Message)

	_, err = Search(context.Background(), &fakeSearcher{err: errors.New("dial tcp")}, "x", "")
	assert.ErrorAs(t, err, &se)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3:05", FormatDuration(185*time.Second))
	assert.Equal(t, "0:00", FormatDuration(0))
}

type recordingJoiner struct {
	calls [][]any
}

func (r *recordingJoiner) ChannelVoiceJoinManual(gID, cID string, mute, deaf bool) error {
	r.calls = append(r.calls, []any{gID, cID, mute, deaf})
	return nil
}

func TestSessionVoice(t *testing.T) {
	j := &recordingJoiner{}
	v := SessionVoice{Session: j}

	require.NoError(t, v.Join("g", "vc"))
	require.NoError(t, v.Leave("g"))
	assert.Equal(t, [][]any{{"g", "vc", false, true}, {"g", "", false, false}}, j.calls)
}
