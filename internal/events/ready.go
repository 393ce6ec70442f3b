// Package events provides event handlers for the bot
package events

import (
	"fmt"

	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvents registers the connection lifecycle handlers
func RegisterReadyEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		onReady(s, r, client.Prefix)
	})
	client.EventHandler.OnResumed(onResumed)
	client.EventHandler.OnDisconnect(onDisconnect)
}

// presence is the activity shown under the bot's name
func presence(prefix string) string {
	return prefix + "help para comandos"
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready, prefix string) {
	logger.Success(fmt.Sprintf("✅ Bot conectado: %s", r.User.Username), "Ready")
	logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

	// Establecer estado del bot
	if err := s.UpdateGameStatus(0, presence(prefix)); err != nil {
		logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
		return
	}

	logger.Debug("Estado del bot establecido correctamente", "Ready")
}

func onResumed(s *discordgo.Session, r *discordgo.Resumed) {
	logger.Info("🔄 Sesión con Discord reanudada", "Ready")
}

func onDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	logger.Warn("⚠️ Desconectado de Discord, reintentando...", "Ready")
}
