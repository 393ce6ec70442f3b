// Package events provides a registry for organizing bot events.
package events

import (
	"github.com/PancyStudios/HelperBotGo/internal/commands"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, st *commands.State) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready, resume and disconnect
	RegisterReadyEvents(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client, st)

	// Auto responses in activated channels
	RegisterMessageEvents(client, st)

	// Bot voice disconnects
	RegisterVoiceEvents(client, st)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
