// Package main is the entry point for the HelperBot Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/HelperBotGo/internal/activation"
	"github.com/PancyStudios/HelperBotGo/internal/ai"
	"github.com/PancyStudios/HelperBotGo/internal/commands"
	"github.com/PancyStudios/HelperBotGo/internal/events"
	"github.com/PancyStudios/HelperBotGo/internal/music"
	"github.com/PancyStudios/HelperBotGo/internal/provision"
	"github.com/PancyStudios/HelperBotGo/internal/purge"
	"github.com/PancyStudios/HelperBotGo/pkg/config"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/errors"
	"github.com/PancyStudios/HelperBotGo/pkg/lavalink"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/PancyStudios/HelperBotGo/pkg/mqtt"
	"github.com/PancyStudios/HelperBotGo/pkg/web"
	"github.com/bwmarrin/discordgo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		if stderrors.Is(err, config.ErrMissingToken) {
			fmt.Println("❌ Falta DISCORD_TOKEN en el archivo .env")
		} else {
			fmt.Printf("Configuración inválida: %v\n", err)
		}
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando HelperBot Go %s (%s)...", config.Version, cfg.Environment), "Main")

	// Initialize error handler
	errors.Init(cfg.ErrorWebhook)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AI providers, in fallback order
	resolver := ai.NewResolver([]ai.Provider{
		ai.NewHuggingFaceProvider(cfg.HFToken, cfg.HFModel),
		ai.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, ""),
		ai.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel),
	}, ai.WithTimeout(cfg.AITimeout))
	activations := activation.NewRegistry()

	// Initialize Discord client
	discordClient, err := discord.NewClient(cfg.BotToken, cfg.Prefix)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}
	session := discordClient.Session

	// Lavalink connects once the bot user id is known
	lavalinkClient := lavalink.NewClient(lavalink.NodeConfig{
		Name:     "HelperBot",
		Host:     cfg.LavalinkHost,
		Port:     cfg.LavalinkPort,
		Password: cfg.LavalinkPassword,
		Secure:   cfg.LavalinkSecure,
	})
	lavalinkClient.RegisterHandlers(session)
	discordClient.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		lavalinkClient.Connect(ctx, r.User.ID)
	})

	// Initialize MQTT
	var mqttClient *mqtt.MqttCommunicator
	var publisher music.StatePublisher
	if cfg.MQTTEnabled() {
		clientID := "helperbot"
		if !cfg.IsProd() {
			clientID = "helperbot_canary"
		}
		mqttClient = mqtt.NewMqttCommunicator(mqtt.Options{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: clientID,
		})
		if err := mqttClient.Connect(5 * time.Second); err != nil {
			logger.Warn(fmt.Sprintf("MQTT no disponible todavía: %v", err), "Main")
		}
		publisher = mqttClient
	}

	// Music
	musicManager := music.NewManager(lavalinkClient, music.SessionVoice{Session: session}, publisher)
	go musicManager.Run(ctx, lavalinkClient.TrackEnds())

	st := &commands.State{
		Activations:  activations,
		AI:           resolver,
		Music:        musicManager,
		Searcher:     lavalinkClient,
		SearchPrefix: cfg.LavalinkSearchPrefix,
		Voice:        session.State,
		Provisioner:  provision.New(session),
		Purger:       purge.New(session),
	}

	// Register commands and events
	commands.RegisterAll(discordClient, st)
	events.RegisterAll(discordClient, st)

	deps := web.Deps{
		Bot:      discordClient,
		Music:    musicManager,
		AI:       resolver,
		Channels: activations,
		Version:  config.Version,
	}

	if mqttClient != nil {
		registerMqttHandlers(mqttClient, deps)
	}

	// Initialize web server
	webServer, err := web.NewServer(web.Options{
		LogsWebhookURL: cfg.LogsWebhook,
		AllowedHosts:   cfg.WebAllowedHosts,
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating web server: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(webServer, deps)
	webServer.StartAsync(cfg.Port)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("HelperBot Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando HelperBot Go...", "Main")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando el servidor web: %v", err), "Main")
	}
	if err := discordClient.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}
	cancel()
	lavalinkClient.Close()
	if mqttClient != nil {
		mqttClient.Destroy()
	}
}

// registerMqttHandlers answers status requests from the dashboard.
func registerMqttHandlers(mc *mqtt.MqttCommunicator, deps web.Deps) {
	if err := mc.On("status", func(payload map[string]interface{}) (interface{}, error) {
		return deps.Status(), nil
	}); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo registrar status: %v", err), "MQTT")
	}

	if err := mc.On("music", func(payload map[string]interface{}) (interface{}, error) {
		guildID, _ := payload["guildId"].(string)
		if guildID == "" {
			return nil, stderrors.New("falta guildId")
		}
		return deps.Music.Snapshot(guildID), nil
	}); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo registrar music: %v", err), "MQTT")
	}
}
