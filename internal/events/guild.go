// Package events provides event handlers for guild events
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

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient, st *commands.State) {
	client.EventHandler.OnGuildCreate(onGuildCreate)
	client.EventHandler.OnGuildDelete(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		onGuildDelete(st, g)
	})
}

// onGuildCreate is called when the bot joins a guild or it becomes available
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	logger.Info(fmt.Sprintf("🏠 Servidor disponible: %s (%s)", g.Name, g.ID), "Guild")
}

// onGuildDelete drops the guild's playback when the bot leaves it.
// Outages also arrive as GuildDelete and keep the queue.
func onGuildDelete(st *commands.State, g *discordgo.GuildDelete) {
	if g.Guild == nil {
		return
	}
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("⚠️ Servidor no disponible: %s", g.ID), "Guild")
		return
	}

	logger.Info(fmt.Sprintf("👋 Bot removido del servidor: %s", g.ID), "Guild")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st.Music.Forget(ctx, g.ID)
}
