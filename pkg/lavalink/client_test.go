package lavalink

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type fakeNode struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	if f.handler != nil {
		f.handler(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{}`))
}

func (f *fakeNode) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	addr := srv.Listener.Addr().(*net.TCPAddr)
	return NewClient(NodeConfig{Host: "127.0.0.1", Port: addr.Port, Password: "youshallnotpass"})
}

func TestDecodeLoadResult(t *testing.T) {
	track := `{"encoded":"QAAA","info":{"title":"Song","author":"Band","length":180000,"uri":"https://youtu.be/x"}}`

	tests := []struct {
		name   string
		body   string
		typ    LoadType
		tracks int
	}{
		{"track", `{"loadType":"track","data":` + track + `}`, LoadTypeTrack, 1},
		{"search", `{"loadType":"search","data":[` + track + `,` + track + `]}`, LoadTypeSearch, 2},
		{"playlist", `{"loadType":"playlist","data":{"info":{"name":"Mix"},"tracks":[` + track + `]}}`, LoadTypePlaylist, 1},
		{"empty", `{"loadType":"empty","data":{}}`, LoadTypeEmpty, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decodeLoadResult([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.typ, res.LoadType)
			assert.Len(t, res.Tracks, tt.tracks)
			if tt.tracks > 0 {
				assert.Equal(t, "QAAA", res.Tracks[0].Encoded)
				assert.Equal(t, 3*time.Minute, res.Tracks[0].Info.Duration())
			}
		})
	}

	res, err := decodeLoadResult([]byte(`{"loadType":"error","data":{"message":"blocked","severity":"common","cause":"x"}}`))
	require.NoError(t, err)
	require.NotNil(t, res.Exception)
	assert.Equal(t, "blocked", res.Exception.Message)

	res, err = decodeLoadResult([]byte(`{"loadType":"playlist","data":{"info":{"name":"Mix"},"tracks":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, "Mix", res.PlaylistName)
}

func TestEndReasonMayStartNext(t *testing.T) {
	assert.True(t, EndReasonFinished.MayStartNext())
	assert.True(t, EndReasonLoadFailed.MayStartNext())
	assert.False(t, EndReasonStopped.MayStartNext())
	assert.False(t, EndReasonReplaced.MayStartNext())
	assert.False(t, EndReasonCleanup.MayStartNext())
}

func TestHandleMessageReadyAndTrackEnd(t *testing.T) {
	c := NewClient(NodeConfig{Host: "localhost", Port: 2333})

	var ready message
	require.NoError(t, json.Unmarshal([]byte(`{"op":"ready","resumed":false,"sessionId":"abc"}`), &ready))
	c.handleMessage(context.Background(), &ready)
	assert.Equal(t, "abc", c.SessionID())

	var end message
	require.NoError(t, json.Unmarshal([]byte(`{"op":"event","type":"TrackEndEvent","guildId":"g1","track":{"encoded":"QAAA","info":{"title":"Song"}},"reason":"finished"}`), &end))
	c.handleMessage(context.Background(), &end)

	select {
	case ev := <-c.TrackEnds():
		assert.Equal(t, "g1", ev.GuildID)
		assert.Equal(t, "QAAA", ev.Track.Encoded)
		assert.Equal(t, EndReasonFinished, ev.Reason)
	default:
		t.Fatal("expected a TrackEndEvent")
	}
}

func TestTrackEndDoesNotBlockAfterCancel(t *testing.T) {
	c := NewClient(NodeConfig{Host: "localhost", Port: 2333})
	for i := 0; i < cap(c.events); i++ {
		c.events <- TrackEndEvent{GuildID: "lleno"}
	}

	var end message
	require.NoError(t, json.Unmarshal([]byte(`{"op":"event","type":"TrackEndEvent","guildId":"g1","reason":"finished"}`), &end))

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		c.handleMessage(ctx, &end)
		close(returned)
	}()

	cancel()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("handleMessage blocked on a full event buffer")
	}
	assert.Len(t, c.events, cap(c.events))
}

func TestLoadTracks(t *testing.T) {
	node := &fakeNode{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"loadType":"search","data":[{"encoded":"QAAA","info":{"title":"Song"}}]}`))
	}}
	c := newTestClient(t, node)

	res, err := c.LoadTracks(context.Background(), "ytsearch:never gonna")
	require.NoError(t, err)
	assert.Equal(t, LoadTypeSearch, res.LoadType)

	reqs := node.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v4/loadtracks", reqs[0].Path)
	assert.Equal(t, "identifier=ytsearch%3Anever+gonna", reqs[0].Query)
	assert.Equal(t, "youshallnotpass", reqs[0].Auth)
}

func TestLoadTracksHTTPError(t *testing.T) {
	node := &fakeNode{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}}
	c := newTestClient(t, node)

	_, err := c.LoadTracks(context.Background(), "ytsearch:x")
	var restErr *RestError
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, http.StatusUnauthorized, restErr.Status)
}

func TestPlayerCallsRequireSession(t *testing.T) {
	c := NewClient(NodeConfig{Host: "localhost", Port: 2333})
	assert.ErrorIs(t, c.Play(context.Background(), "g1", "QAAA"), ErrNotReady)
}

func TestPlayerUpdates(t *testing.T) {
	node := &fakeNode{}
	c := newTestClient(t, node)
	c.sessionID = "sess"
	ctx := context.Background()

	require.NoError(t, c.Play(ctx, "g1", "QAAA"))
	require.NoError(t, c.Pause(ctx, "g1", true))
	require.NoError(t, c.Stop(ctx, "g1"))
	require.NoError(t, c.Destroy(ctx, "g1"))

	reqs := node.recorded()
	require.Len(t, reqs, 4)

	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, "/v4/sessions/sess/players/g1", reqs[0].Path)
	assert.Equal(t, map[string]any{"encoded": "QAAA"}, reqs[0].Body["track"])
	assert.Equal(t, false, reqs[0].Body["paused"])

	assert.Equal(t, true, reqs[1].Body["paused"])
	assert.NotContains(t, reqs[1].Body, "track")

	assert.Equal(t, map[string]any{"encoded": nil}, reqs[2].Body["track"])

	assert.Equal(t, http.MethodDelete, reqs[3].Method)
}

func TestVoiceForwarding(t *testing.T) {
	node := &fakeNode{}
	c := newTestClient(t, node)
	c.sessionID = "sess"

	c.handleVoiceState("g1", "vc1", "discord-session")
	assert.Empty(t, node.recorded())

	c.handleVoiceServer("g1", "tok", "eu.discord.media:443")
	reqs := node.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{
		"token":     "tok",
		"endpoint":  "eu.discord.media:443",
		"sessionId": "discord-session",
	}, reqs[0].Body["voice"])

	// Same state again is not resent.
	c.handleVoiceState("g1", "vc1", "discord-session")
	assert.Len(t, node.recorded(), 1)

	// Leaving voice drops the stored state.
	c.handleVoiceState("g1", "", "")
	c.voiceMu.Lock()
	_, ok := c.voice["g1"]
	c.voiceMu.Unlock()
	assert.False(t, ok)
}

func TestWebsocketSession(t *testing.T) {
	upgrader := websocket.Upgrader{}
	headers := make(chan http.Header, 1)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"ready","resumed":false,"sessionId":"ws-session"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"event","type":"TrackEndEvent","guildId":"g9","track":{"encoded":"QBBB","info":{}},"reason":"finished"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	c.retryDelay = 10 * time.Millisecond

	c.Connect(context.Background(), "bot-user")
	defer c.Close()

	select {
	case h := <-headers:
		assert.Equal(t, "youshallnotpass", h.Get("Authorization"))
		assert.Equal(t, "bot-user", h.Get("User-Id"))
		assert.Equal(t, clientName, h.Get("Client-Name"))
	case <-time.After(2 * time.Second):
		t.Fatal("node never received a connection")
	}

	select {
	case ev := <-c.TrackEnds():
		assert.Equal(t, "g9", ev.GuildID)
	case <-time.After(2 * time.Second):
		t.Fatal("no TrackEndEvent delivered")
	}
	assert.Eventually(t, c.Connected, time.Second, 10*time.Millisecond)
}
