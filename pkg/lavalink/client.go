// Package lavalink provides a Lavalink v4 client for music playback.
// It keeps the node websocket alive, loads tracks, drives guild players over
// the REST API and forwards Discord voice credentials to the node.
package lavalink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const clientName = "HelperBot-Go/1.0"

// ErrNotReady is returned when a player call is made before the node sent its session id.
var ErrNotReady = errors.New("lavalink no está listo")

// Client manages the connection to a Lavalink node
type Client struct {
	config     NodeConfig
	httpClient *http.Client
	retryDelay time.Duration
	events     chan TrackEndEvent

	mu        sync.RWMutex
	userID    string
	conn      *websocket.Conn
	sessionID string
	connected bool
	started   bool
	cancel    context.CancelFunc
	done      chan struct{}

	voiceMu sync.Mutex
	voice   map[string]*guildVoice
}

// NewClient creates a client for one node. Call Connect once the bot user id is known.
func NewClient(config NodeConfig) *Client {
	logger.Debug("Initializing Lavalink Client", "Lavalink")
	if config.Name == "" {
		config.Name = "main"
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retryDelay: 5 * time.Second,
		events:     make(chan TrackEndEvent, 64),
		done:       make(chan struct{}),
		voice:      make(map[string]*guildVoice),
	}
}

// TrackEnds delivers every TrackEndEvent received from the node.
func (c *Client) TrackEnds() <-chan TrackEndEvent {
	return c.events
}

// Connected reports whether the websocket is up and the node is ready.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.sessionID != ""
}

// SessionID returns the node session id, empty until the ready op arrives.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Connect starts the websocket loop for userID. Further calls are no-ops.
func (c *Client) Connect(ctx context.Context, userID string) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.started = true
	c.userID = userID
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(ctx)
}

func (c *Client) wsURL() string {
	scheme := "ws"
	if c.config.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/v4/websocket", scheme, c.config.Host, c.config.Port)
}

func (c *Client) restURL(path string) string {
	scheme := "http"
	if c.config.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, c.config.Host, c.config.Port, path)
}

// run keeps the node connection alive until ctx is done.
func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	for {
		if err := c.connectOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Warn(fmt.Sprintf("Desconectado de Lavalink %s: %v. Reintentando...", c.config.Name, err), "Lavalink")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *Client) connectOnce(ctx context.Context) error {
	c.mu.RLock()
	userID := c.userID
	c.mu.RUnlock()

	headers := http.Header{}
	headers.Set("Authorization", c.config.Password)
	headers.Set("User-Id", userID)
	headers.Set("Client-Name", clientName)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.wsURL(), headers)
	if err != nil {
		return fmt.Errorf("error al conectar: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	logger.Success(fmt.Sprintf("Conectado con Lavalink server: %s", c.config.Name), "Lavalink")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	err = c.readMessages(ctx, conn)

	c.mu.Lock()
	c.connected = false
	c.sessionID = ""
	c.conn = nil
	c.mu.Unlock()
	conn.Close()
	return err
}

// readMessages reads messages from the Lavalink websocket
func (c *Client) readMessages(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug(fmt.Sprintf("Mensaje de Lavalink inválido: %v", err), "Lavalink")
			continue
		}
		c.handleMessage(ctx, &msg)
	}
}

// handleMessage processes incoming Lavalink messages
func (c *Client) handleMessage(ctx context.Context, msg *message) {
	switch msg.Op {
	case "ready":
		c.mu.Lock()
		c.sessionID = msg.SessionID
		c.mu.Unlock()
		logger.Info(fmt.Sprintf("Lavalink ready (session %s, resumed=%v)", msg.SessionID, msg.Resumed), "Lavalink")
		c.flushVoice()
	case "event":
		c.handleEvent(ctx, msg)
	case "playerUpdate", "stats":
	}
}

// handleEvent handles Lavalink events. A full event buffer blocks until ctx is done.
func (c *Client) handleEvent(ctx context.Context, msg *message) {
	switch msg.Type {
	case "TrackStartEvent":
		if msg.Track != nil {
			logger.Info(fmt.Sprintf("Reproduciendo: %s en guild %s", msg.Track.Info.Title, msg.GuildID), "Lavalink")
		}
	case "TrackEndEvent":
		ev := TrackEndEvent{GuildID: msg.GuildID, Reason: msg.Reason}
		if msg.Track != nil {
			ev.Track = *msg.Track
		}
		select {
		case c.events <- ev:
		case <-ctx.Done():
			logger.Warn(fmt.Sprintf("TrackEndEvent descartado en guild %s", ev.GuildID), "Lavalink")
		}
	case "TrackExceptionEvent":
		detail := ""
		if msg.Exception != nil {
			detail = msg.Exception.Message
		}
		logger.Error(fmt.Sprintf("Track exception in guild %s: %s", msg.GuildID, detail), "Lavalink")
	case "TrackStuckEvent":
		logger.Warn(fmt.Sprintf("Track stuck in guild %s", msg.GuildID), "Lavalink")
	case "WebSocketClosedEvent":
		logger.Warn(fmt.Sprintf("WebSocket closed for guild %s (code %d)", msg.GuildID, msg.Code), "Lavalink")
	}
}

// Close stops the websocket loop.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.cancel
	started := c.started
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-c.done
	}
	logger.System("Lavalink client desconectado", "Lavalink")
}
