// Package events provides event handlers for voice events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/HelperBotGo/internal/commands"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterVoiceEvents registers all voice-related event handlers
func RegisterVoiceEvents(client *discord.ExtendedClient, st *commands.State) {
	client.EventHandler.OnVoiceStateUpdate(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		if s.State == nil || s.State.User == nil {
			return
		}
		onVoiceStateUpdate(s.State.User.ID, st, v)
	})
}

// onVoiceStateUpdate resets the guild queue when the bot is disconnected from voice.
func onVoiceStateUpdate(botID string, st *commands.State, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || v.UserID != botID {
		return
	}

	if v.ChannelID != "" {
		logger.Debug(fmt.Sprintf("🎤 Bot en canal de voz %s (guild %s)", v.ChannelID, v.GuildID), "Voice")
		st.Music.VoiceJoined(v.GuildID)
		return
	}

	// Handlers run concurrently, so a newer join may already be in the state cache.
	if st.Voice != nil {
		if vs, err := st.Voice.VoiceState(v.GuildID, botID); err == nil && vs.ChannelID != "" {
			logger.Debug(fmt.Sprintf("Desconexión de voz obsoleta ignorada en guild %s", v.GuildID), "Voice")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if st.Music.VoiceLeft(ctx, v.GuildID) {
		logger.Info(fmt.Sprintf("🔇 Bot desconectado de voz en guild %s", v.GuildID), "Voice")
	}
}
