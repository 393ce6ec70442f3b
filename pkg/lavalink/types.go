package lavalink

import (
	"time"

	"github.com/goccy/go-json"
)

// NodeConfig holds configuration for a Lavalink node
type NodeConfig struct {
	Name     string
	Host     string
	Port     int
	Password string
	Secure   bool
}

// TrackInfo contains information about a track
type TrackInfo struct {
	Identifier string `json:"identifier"`
	IsSeekable bool   `json:"isSeekable"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Position   int64  `json:"position"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	ArtworkURL string `json:"artworkUrl"`
	SourceName string `json:"sourceName"`
}

// Duration returns the track length.
func (i TrackInfo) Duration() time.Duration {
	return time.Duration(i.Length) * time.Millisecond
}

// Track represents a playable track
type Track struct {
	Encoded string    `json:"encoded"`
	Info    TrackInfo `json:"info"`
}

// LoadType is the kind of result returned by /v4/loadtracks.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// Exception is the error payload Lavalink attaches to failed loads and track exceptions.
type Exception struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Cause    string `json:"cause"`
}

// LoadResult is a decoded /v4/loadtracks response.
type LoadResult struct {
	LoadType     LoadType
	Tracks       []Track
	PlaylistName string
	Exception    *Exception
}

type loadResponse struct {
	LoadType LoadType        `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

type playlistData struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Tracks []Track `json:"tracks"`
}

// decodeLoadResult decodes the loadType dependent data field.
func decodeLoadResult(body []byte) (*LoadResult, error) {
	var resp loadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	result := &LoadResult{LoadType: resp.LoadType}
	switch resp.LoadType {
	case LoadTypeTrack:
		var track Track
		if err := json.Unmarshal(resp.Data, &track); err != nil {
			return nil, err
		}
		result.Tracks = []Track{track}
	case LoadTypePlaylist:
		var playlist playlistData
		if err := json.Unmarshal(resp.Data, &playlist); err != nil {
			return nil, err
		}
		result.Tracks = playlist.Tracks
		result.PlaylistName = playlist.Info.Name
	case LoadTypeSearch:
		if err := json.Unmarshal(resp.Data, &result.Tracks); err != nil {
			return nil, err
		}
	case LoadTypeError:
		result.Exception = &Exception{}
		if err := json.Unmarshal(resp.Data, result.Exception); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// EndReason is why a track stopped playing.
type EndReason string

const (
	EndReasonFinished   EndReason = "finished"
	EndReasonLoadFailed EndReason = "loadFailed"
	EndReasonStopped    EndReason = "stopped"
	EndReasonReplaced   EndReason = "replaced"
	EndReasonCleanup    EndReason = "cleanup"
)

// MayStartNext reports whether the next queued track should start.
func (r EndReason) MayStartNext() bool {
	return r == EndReasonFinished || r == EndReasonLoadFailed
}

// TrackEndEvent is delivered when the node finishes a guild's track.
type TrackEndEvent struct {
	GuildID string    `json:"guildId"`
	Track   Track     `json:"track"`
	Reason  EndReason `json:"reason"`
}

// message is the envelope of every websocket frame sent by the node.
type message struct {
	Op        string          `json:"op"`
	Type      string          `json:"type"`
	GuildID   string          `json:"guildId"`
	SessionID string          `json:"sessionId"`
	Resumed   bool            `json:"resumed"`
	Track     *Track          `json:"track"`
	Reason    EndReason       `json:"reason"`
	Exception *Exception      `json:"exception"`
	Code      int             `json:"code"`
	State     json.RawMessage `json:"state"`
	Players   int             `json:"players"`
}

type trackUpdate struct {
	Encoded *string `json:"encoded"`
}

type voiceUpdate struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}

// playerUpdate is the body of PATCH /v4/sessions/{session}/players/{guild}.
type playerUpdate struct {
	Track  *trackUpdate `json:"track,omitempty"`
	Paused *bool        `json:"paused,omitempty"`
	Voice  *voiceUpdate `json:"voice,omitempty"`
}
