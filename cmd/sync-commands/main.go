// Package main provides a utility to sync Discord slash commands.
// This removes stale commands from Discord and ensures only currently-defined commands are registered.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List all registered commands (global or guild)
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/HelperBotGo/internal/commands"
	"github.com/PancyStudios/HelperBotGo/pkg/config"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
)

func main() {
	// Parse command line flags
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", "SyncCommands")

	client, err := discord.NewClient(cfg.BotToken, cfg.Prefix)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}

	// The gateway handshake fills State.User, which holds the application id.
	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), "SyncCommands")
		os.Exit(1)
	}
	defer client.Session.Close()

	logger.Success("Conectado a Discord", "SyncCommands")

	// Handlers are never run here, only their definitions are needed.
	commands.RegisterAll(client, &commands.State{})

	appID := client.Session.State.User.ID
	handler := client.CommandHandler
	scope := "globales"
	if *guildID != "" {
		scope = "del servidor " + *guildID
	}

	switch {
	case *listCmd:
		cmds, err := handler.ListCommands(client.Session, appID, *guildID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error obteniendo comandos %s: %v", scope, err), "SyncCommands")
			os.Exit(1)
		}
		if len(cmds) == 0 {
			logger.Info("No hay comandos registrados", "SyncCommands")
		}
		for i, cmd := range cmds {
			logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
		}
	case *cleanCmd:
		logger.Info(fmt.Sprintf("🧹 Eliminando comandos %s...", scope), "SyncCommands")
		if err := handler.CleanCommands(client.Session, appID, *guildID); err != nil {
			logger.Error(fmt.Sprintf("Error eliminando comandos: %v", err), "SyncCommands")
			os.Exit(1)
		}
	default:
		logger.Info(fmt.Sprintf("🔄 Sincronizando comandos %s...", scope), "SyncCommands")
		if _, err := handler.SyncCommands(client.Session, appID, *guildID); err != nil {
			logger.Error(fmt.Sprintf("Error sincronizando comandos: %v", err), "SyncCommands")
			os.Exit(1)
		}
	}

	logger.Success("Operación completada exitosamente", "SyncCommands")
}
