package lavalink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

// RestError is a non-2xx answer from the node REST API.
type RestError struct {
	Status int
	Body   string
}

func (e *RestError) Error() string {
	return fmt.Sprintf("lavalink http %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.restURL(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.config.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RestError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// LoadTracks resolves an identifier (a link or a `ytsearch:` style query).
func (c *Client) LoadTracks(ctx context.Context, identifier string) (*LoadResult, error) {
	data, err := c.do(ctx, http.MethodGet, "/v4/loadtracks?identifier="+url.QueryEscape(identifier), nil)
	if err != nil {
		return nil, err
	}
	return decodeLoadResult(data)
}

func (c *Client) playerPath(guildID string) (string, error) {
	sessionID := c.SessionID()
	if sessionID == "" {
		return "", ErrNotReady
	}
	return fmt.Sprintf("/v4/sessions/%s/players/%s", sessionID, guildID), nil
}

func (c *Client) updatePlayer(ctx context.Context, guildID string, update playerUpdate) error {
	path, err := c.playerPath(guildID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, path+"?noReplace=false", update)
	return err
}

// Play replaces the guild's current track with encoded and unpauses.
func (c *Client) Play(ctx context.Context, guildID, encoded string) error {
	paused := false
	return c.updatePlayer(ctx, guildID, playerUpdate{
		Track:  &trackUpdate{Encoded: &encoded},
		Paused: &paused,
	})
}

// Pause pauses or resumes playback
func (c *Client) Pause(ctx context.Context, guildID string, paused bool) error {
	return c.updatePlayer(ctx, guildID, playerUpdate{Paused: &paused})
}

// Stop clears the guild's current track.
func (c *Client) Stop(ctx context.Context, guildID string) error {
	return c.updatePlayer(ctx, guildID, playerUpdate{Track: &trackUpdate{Encoded: nil}})
}

// Destroy removes the guild player from the node.
func (c *Client) Destroy(ctx context.Context, guildID string) error {
	c.forgetVoice(guildID)

	path, err := c.playerPath(guildID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, path, nil)
	return err
}
