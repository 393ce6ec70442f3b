package lavalink

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// guildVoice collects the two halves of a Discord voice connection.
type guildVoice struct {
	sessionID string
	token     string
	endpoint  string
	sent      bool
}

func (v *guildVoice) complete() bool {
	return v.sessionID != "" && v.token != "" && v.endpoint != ""
}

// RegisterHandlers forwards the bot's voice updates from session to the node.
func (c *Client) RegisterHandlers(session *discordgo.Session) {
	session.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		if s.State == nil || s.State.User == nil || v.UserID != s.State.User.ID {
			return
		}
		c.handleVoiceState(v.GuildID, v.ChannelID, v.SessionID)
	})
	session.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceServerUpdate) {
		c.handleVoiceServer(v.GuildID, v.Token, v.Endpoint)
	})
}

func (c *Client) handleVoiceState(guildID, channelID, sessionID string) {
	if channelID == "" {
		c.forgetVoice(guildID)
		return
	}

	c.voiceMu.Lock()
	v := c.guildVoice(guildID)
	if v.sessionID != sessionID {
		v.sessionID = sessionID
		v.sent = false
	}
	c.voiceMu.Unlock()

	c.sendVoice(guildID)
}

func (c *Client) handleVoiceServer(guildID, token, endpoint string) {
	c.voiceMu.Lock()
	v := c.guildVoice(guildID)
	v.token = token
	v.endpoint = endpoint
	v.sent = false
	c.voiceMu.Unlock()

	c.sendVoice(guildID)
}

// guildVoice must be called with voiceMu held.
func (c *Client) guildVoice(guildID string) *guildVoice {
	v, ok := c.voice[guildID]
	if !ok {
		v = &guildVoice{}
		c.voice[guildID] = v
	}
	return v
}

func (c *Client) forgetVoice(guildID string) {
	c.voiceMu.Lock()
	delete(c.voice, guildID)
	c.voiceMu.Unlock()
}

// sendVoice pushes a complete voice state to the node once per change.
func (c *Client) sendVoice(guildID string) {
	c.voiceMu.Lock()
	v, ok := c.voice[guildID]
	if !ok || !v.complete() || v.sent || c.SessionID() == "" {
		c.voiceMu.Unlock()
		return
	}
	update := &voiceUpdate{Token: v.token, Endpoint: v.endpoint, SessionID: v.sessionID}
	v.sent = true
	c.voiceMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.updatePlayer(ctx, guildID, playerUpdate{Voice: update}); err != nil {
		logger.Error(fmt.Sprintf("Error enviando voz a Lavalink en guild %s: %v", guildID, err), "Lavalink")
		c.voiceMu.Lock()
		if cur, ok := c.voice[guildID]; ok && cur == v {
			v.sent = false
		}
		c.voiceMu.Unlock()
	}
}

// flushVoice resends every complete voice state after the node (re)connects.
func (c *Client) flushVoice() {
	c.voiceMu.Lock()
	guilds := make([]string, 0, len(c.voice))
	for id, v := range c.voice {
		v.sent = false
		guilds = append(guilds, id)
	}
	c.voiceMu.Unlock()

	for _, id := range guilds {
		go c.sendVoice(id)
	}
}
