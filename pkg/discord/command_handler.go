// Package discord provides the command handler for loading and registering commands.
package discord

import (
	"fmt"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ApplicationCommandCreator is the part of the Discord REST API used to
// publish slash commands.
type ApplicationCommandCreator interface {
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a slash command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	if _, exists := ch.client.Commands.Get(cmd.Name); !exists {
		ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	}
	ch.client.Commands.Set(cmd.Name, cmd)

	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// RegisterPrefixCommand adds a prefix command to the handler
func (ch *CommandHandler) RegisterPrefixCommand(cmd *PrefixCommand) {
	ch.client.PrefixCommands.Set(cmd.Name, cmd)
	logger.Debug("Comando de prefijo registrado: "+ch.client.Prefix+cmd.Name, "CommandHandler")
}

// RegisterModal adds a modal submit handler
func (ch *CommandHandler) RegisterModal(modal *Modal) {
	ch.client.Modals.Set(modal.CustomID, modal)
	logger.Debug("Modal registrado: "+modal.CustomID, "CommandHandler")
}

// SlashCommands returns the application commands queued for registration
func (ch *CommandHandler) SlashCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommands registers all slash commands with Discord
func (ch *CommandHandler) RegisterCommands() {
	ch.publish(ch.client.Session, ch.client.Session.State.User.ID)
}

func (ch *CommandHandler) publish(api ApplicationCommandCreator, appID string) int {
	logger.Info("🔄 Registrando comandos globales...", "CommandHandler")

	registered := 0
	for _, cmd := range ch.slashCommands {
		if _, err := api.ApplicationCommandCreate(appID, "", cmd); err != nil {
			logger.Error("Error registrando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
			continue
		}
		registered++
	}

	logger.Success("✅ Comandos globales registrados.", "CommandHandler")
	return registered
}

// CommandSyncer is the part of the Discord REST API used by the sync-commands tool.
type CommandSyncer interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// ListCommands returns the commands Discord has for appID. An empty guildID
// lists global commands.
func (ch *CommandHandler) ListCommands(api CommandSyncer, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	return api.ApplicationCommands(appID, guildID)
}

// SyncCommands replaces the published commands with the registered ones,
// dropping stale ones in the same call.
func (ch *CommandHandler) SyncCommands(api CommandSyncer, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	created, err := api.ApplicationCommandBulkOverwrite(appID, guildID, ch.slashCommands)
	if err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("✅ %d comandos sincronizados", len(created)), "CommandHandler")
	return created, nil
}

// CleanCommands removes every published command.
func (ch *CommandHandler) CleanCommands(api CommandSyncer, appID, guildID string) error {
	_, err := api.ApplicationCommandBulkOverwrite(appID, guildID, []*discordgo.ApplicationCommand{})
	return err
}
