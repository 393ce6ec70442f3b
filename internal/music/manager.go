// Package music keeps one playback queue per guild and drives the audio node
// through it.
package music

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/lavalink"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
)

// State is the playback state of one guild.
type State int

const (
	StateIdle State = iota
	StateConnected
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrNotPlaying     = errors.New("no hay nada reproduciéndose")
	ErrNotPaused      = errors.New("la reproducción no está pausada")
	ErrNothingPlaying = errors.New("no hay nada en reproducción ni en cola")
	ErrVoiceConnect   = errors.New("no se pudo conectar al canal de voz")
)

// Player controls a guild player on the audio node.
type Player interface {
	Play(ctx context.Context, guildID, encoded string) error
	Pause(ctx context.Context, guildID string, paused bool) error
	Stop(ctx context.Context, guildID string) error
	Destroy(ctx context.Context, guildID string) error
}

// VoiceConnector joins and leaves guild voice channels.
type VoiceConnector interface {
	Join(guildID, channelID string) error
	Leave(guildID string) error
}

// StatePublisher receives a snapshot after every state change.
type StatePublisher interface {
	Publish(topic string, payload interface{}) error
}

// Snapshot is a copy of a guild's playback state.
type Snapshot struct {
	GuildID        string  `json:"guildId"`
	State          State   `json:"state"`
	VoiceChannelID string  `json:"voiceChannelId,omitempty"`
	TextChannelID  string  `json:"textChannelId,omitempty"`
	Current        *Track  `json:"current"`
	Queue          []Track `json:"queue"`
	Timestamp      int64   `json:"timestamp"`
}

// EnqueueResult tells the caller whether the track started or waits in line.
type EnqueueResult struct {
	Track    Track
	Started  bool
	Position int
}

type guildState struct {
	mu             sync.Mutex
	state          State
	voiceChannelID string
	textChannelID  string
	current        *Track
	queue          []Track
	// joinPending is set from Join until the gateway confirms the bot in voice.
	joinPending bool
}

// Manager owns every guild queue.
type Manager struct {
	player    Player
	voice     VoiceConnector
	publisher StatePublisher
	topicRoot string

	mu     sync.Mutex
	guilds map[string]*guildState
}

// NewManager builds a manager. publisher may be nil.
func NewManager(player Player, voice VoiceConnector, publisher StatePublisher) *Manager {
	return &Manager{
		player:    player,
		voice:     voice,
		publisher: publisher,
		topicRoot: "helperbot/music",
		guilds:    make(map[string]*guildState),
	}
}

func (m *Manager) guild(guildID string) *guildState {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guilds[guildID]
	if !ok {
		g = &guildState{}
		m.guilds[guildID] = g
	}
	return g
}

// Guilds returns the ids of guilds that are not idle.
func (m *Manager) Guilds() []string {
	m.mu.Lock()
	states := make(map[string]*guildState, len(m.guilds))
	for id, g := range m.guilds {
		states[id] = g
	}
	m.mu.Unlock()

	var ids []string
	for id, g := range states {
		g.mu.Lock()
		if g.state != StateIdle {
			ids = append(ids, id)
		}
		g.mu.Unlock()
	}
	sort.Strings(ids)
	return ids
}

// EnqueueAndMaybePlay connects if needed, queues track and starts it when
// nothing is current.
func (m *Manager) EnqueueAndMaybePlay(ctx context.Context, guildID, voiceChannelID, textChannelID string, track Track) (EnqueueResult, error) {
	g := m.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	joined := false
	if g.state == StateIdle {
		if err := m.voice.Join(guildID, voiceChannelID); err != nil {
			return EnqueueResult{}, fmt.Errorf("%w: %v", ErrVoiceConnect, err)
		}
		g.state = StateConnected
		g.voiceChannelID = voiceChannelID
		g.joinPending = true
		joined = true
	}
	g.textChannelID = textChannelID

	if g.current != nil {
		g.queue = append(g.queue, track)
		m.publish(guildID, "queued", g)
		return EnqueueResult{Track: track, Position: len(g.queue)}, nil
	}

	if err := m.player.Play(ctx, guildID, track.Encoded); err != nil {
		if joined {
			_ = m.disconnect(guildID, g)
		}
		return EnqueueResult{}, fmt.Errorf("error reproduciendo %q: %w", track.Title, err)
	}
	g.current = &track
	g.state = StatePlaying
	logger.Info(fmt.Sprintf("Reproduciendo %s en guild %s", track.Title, guildID), "Music")
	m.publish(guildID, "playing", g)
	return EnqueueResult{Track: track, Started: true}, nil
}

// Skip plays the next queued track, or stops and disconnects when the queue is empty.
// It returns the track now playing, nil when the guild went idle.
func (m *Manager) Skip(ctx context.Context, guildID string) (*Track, error) {
	g := m.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateIdle {
		return nil, ErrNothingPlaying
	}
	return m.advance(ctx, guildID, g)
}

// OnTrackEnded advances the queue when the current track finishes. Events
// for any other track, or caused by our own replace/stop, are ignored.
func (m *Manager) OnTrackEnded(ctx context.Context, ev lavalink.TrackEndEvent) {
	g := m.guild(ev.GuildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil || g.current.Encoded != ev.Track.Encoded {
		logger.Debug(fmt.Sprintf("TrackEndEvent ignorado en guild %s (pista no actual)", ev.GuildID), "Music")
		return
	}
	if !ev.Reason.MayStartNext() {
		logger.Debug(fmt.Sprintf("TrackEndEvent ignorado en guild %s (razón %s)", ev.GuildID, ev.Reason), "Music")
		return
	}

	if _, err := m.advance(ctx, ev.GuildID, g); err != nil {
		logger.Error(fmt.Sprintf("Error avanzando la cola en guild %s: %v", ev.GuildID, err), "Music")
	}
}

// advance must be called with g.mu held.
func (m *Manager) advance(ctx context.Context, guildID string, g *guildState) (*Track, error) {
	for len(g.queue) > 0 {
		next := g.queue[0]
		g.queue = g.queue[1:]

		if err := m.player.Play(ctx, guildID, next.Encoded); err != nil {
			logger.Error(fmt.Sprintf("Error reproduciendo %s en guild %s: %v", next.Title, guildID, err), "Music")
			continue
		}
		g.current = &next
		g.state = StatePlaying
		m.publish(guildID, "playing", g)
		return &next, nil
	}

	if err := m.player.Stop(ctx, guildID); err != nil {
		logger.Debug(fmt.Sprintf("Error deteniendo el reproductor en guild %s: %v", guildID, err), "Music")
	}
	if err := m.disconnect(guildID, g); err != nil {
		logger.Warn(fmt.Sprintf("Error desconectando en guild %s: %v", guildID, err), "Music")
	}
	m.publish(guildID, "idle", g)
	logger.Info(fmt.Sprintf("Cola finalizada en guild %s", guildID), "Music")
	return nil, nil
}

// Pause pauses a playing guild.
func (m *Manager) Pause(ctx context.Context, guildID string) error {
	g := m.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return ErrNotPlaying
	}
	if err := m.player.Pause(ctx, guildID, true); err != nil {
		return err
	}
	g.state = StatePaused
	m.publish(guildID, "paused", g)
	return nil
}

// Resume resumes a paused guild.
func (m *Manager) Resume(ctx context.Context, guildID string) error {
	g := m.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePaused {
		return ErrNotPaused
	}
	if err := m.player.Pause(ctx, guildID, false); err != nil {
		return err
	}
	g.state = StatePlaying
	m.publish(guildID, "resumed", g)
	return nil
}

// Stop clears the queue and disconnects whatever the state. The returned
// error only reports cleanup failures; the guild is idle afterwards.
func (m *Manager) Stop(ctx context.Context, guildID string) error {
	g := m.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	if g.state != StateIdle {
		if err := m.player.Stop(ctx, guildID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.disconnect(guildID, g); err != nil {
		errs = append(errs, err)
	}
	m.publish(guildID, "stopped", g)
	return errors.Join(errs...)
}

// Forget resets a guild whose voice connection is already gone.
func (m *Manager) Forget(ctx context.Context, guildID string) {
	g := m.guild(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()
	m.forget(ctx, guildID, g)
}

// VoiceJoined records that the gateway confirmed the bot in a voice channel.
func (m *Manager) VoiceJoined(guildID string) {
	m.mu.Lock()
	g, ok := m.guilds[guildID]
	m.mu.Unlock()
	if !ok {
		return
	}
	g.mu.Lock()
	g.joinPending = false
	g.mu.Unlock()
}

// VoiceLeft forgets the guild after the bot left voice. Updates that arrive
// while a join is still unconfirmed belong to an earlier session and are
// ignored. It reports whether the guild was reset.
func (m *Manager) VoiceLeft(ctx context.Context, guildID string) bool {
	m.mu.Lock()
	g, ok := m.guilds[guildID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.joinPending || g.state == StateIdle {
		return false
	}
	m.forget(ctx, guildID, g)
	return true
}

// forget must be called with g.mu held.
func (m *Manager) forget(ctx context.Context, guildID string, g *guildState) {
	if g.state == StateIdle {
		return
	}
	if err := m.player.Destroy(ctx, guildID); err != nil {
		logger.Debug(fmt.Sprintf("Error destruyendo el reproductor en guild %s: %v", guildID, err), "Music")
	}
	g.reset()
	m.publish(guildID, "idle", g)
}

// disconnect must be called with g.mu held.
func (m *Manager) disconnect(guildID string, g *guildState) error {
	wasActive := g.state != StateIdle
	g.reset()

	var errs []error
	if wasActive {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.player.Destroy(ctx, guildID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.voice.Leave(guildID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (g *guildState) reset() {
	g.state = StateIdle
	g.current = nil
	g.queue = nil
	g.voiceChannelID = ""
	g.joinPending = false
}

// Snapshot returns a copy of the guild's state.
func (m *Manager) Snapshot(guildID string) Snapshot {
	m.mu.Lock()
	g, ok := m.guilds[guildID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{GuildID: guildID, State: StateIdle, Queue: []Track{}, Timestamp: time.Now().UnixMilli()}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot(guildID)
}

func (g *guildState) snapshot(guildID string) Snapshot {
	s := Snapshot{
		GuildID:        guildID,
		State:          g.state,
		VoiceChannelID: g.voiceChannelID,
		TextChannelID:  g.textChannelID,
		Queue:          append([]Track{}, g.queue...),
		Timestamp:      time.Now().UnixMilli(),
	}
	if g.current != nil {
		current := *g.current
		s.Current = &current
	}
	return s
}

// publish must be called with g.mu held.
func (m *Manager) publish(guildID, event string, g *guildState) {
	if m.publisher == nil {
		return
	}
	topic := fmt.Sprintf("%s/%s/%s", m.topicRoot, guildID, event)
	if err := m.publisher.Publish(topic, g.snapshot(guildID)); err != nil {
		logger.Debug(fmt.Sprintf("Error publicando estado de música: %v", err), "Music")
	}
}

// Run consumes node notifications until ctx is done or events is closed.
func (m *Manager) Run(ctx context.Context, events <-chan lavalink.TrackEndEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.OnTrackEnded(ctx, ev)
		}
	}
}
