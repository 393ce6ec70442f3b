// Package commands provides the bot's prefix and slash command handlers.
package commands

import (
	"context"
	"time"

	"github.com/PancyStudios/HelperBotGo/internal/activation"
	"github.com/PancyStudios/HelperBotGo/internal/ai"
	"github.com/PancyStudios/HelperBotGo/internal/music"
	"github.com/PancyStudios/HelperBotGo/internal/provision"
	"github.com/PancyStudios/HelperBotGo/internal/purge"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// operationTimeout bounds a single command's calls to external services.
const operationTimeout = 30 * time.Second

// VoiceStates looks up where a member is connected. *discordgo.State implements it.
type VoiceStates interface {
	VoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

// State holds everything the handlers share.
type State struct {
	Activations  *activation.Registry
	AI           *ai.Resolver
	Music        *music.Manager
	Searcher     music.Searcher
	SearchPrefix string
	Voice        VoiceStates
	Provisioner  *provision.Provisioner
	Purger       *purge.Purger
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, st *State) {
	// General commands
	RegisterGeneralCommands(client)
	RegisterStatsCommands(client, st)

	// Chat and AI provider commands
	RegisterChatCommands(client, st)

	// Channel activation and provisioning (prefix, slash and modal)
	RegisterChannelCommands(client, st)

	// Purge commands
	RegisterPurgeCommands(client, st)

	// Music commands
	RegisterMusicCommands(client, st)
}

func operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), operationTimeout)
}
