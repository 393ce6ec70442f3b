// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with prefix command, slash command and modal routing.
package discord

import (
	"fmt"
	"strings"
	"sync"
	"time"

	botErrors "github.com/PancyStudios/HelperBotGo/pkg/errors"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// DiscordGoLogger wraps the custom logger to implement discordgo.Logger interface
// Note: discordgo.Logger is a function, not an interface
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		case discordgo.LogDebug:
			logger.Debug(msg, "DiscordGo")
		default:
			logger.Info(msg, "DiscordGo")
		}
	}
}

const genericFailure = "❌ Ocurrió un error al ejecutar el comando."

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	PrefixCommands *PrefixCollection
	Modals         *ModalCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	Prefix         string
	StartTime      time.Time
	mu             sync.RWMutex
	isReady        bool

	sender        MessageSender
	permissionsOf PermissionResolver
}

// NewClient creates a new ExtendedClient
func NewClient(token, prefix string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	// Configure session
	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := newClient(session, prefix)
	c.sender = session
	c.permissionsOf = func(userID, channelID string) (int64, error) {
		return session.UserChannelPermissions(userID, channelID)
	}
	return c, nil
}

func newClient(session *discordgo.Session, prefix string) *ExtendedClient {
	c := &ExtendedClient{
		Session:        session,
		Commands:       NewCollection[*Command](),
		PrefixCommands: NewCollection[*PrefixCommand](),
		Modals:         NewCollection[*Modal](),
		Prefix:         prefix,
	}
	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)
	return c
}

// Start registers the routers and opens the gateway connection
func (c *ExtendedClient) Start() error {
	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Bot conectado como: "+r.User.Username, "Client")

		c.CommandHandler.RegisterCommands()
	})

	c.Session.AddHandler(c.handleInteraction)
	c.Session.AddHandler(c.handleMessage)

	logger.System(fmt.Sprintf("%d comandos de prefijo, %d comandos slash y %d modales cargados",
		c.PrefixCommands.Size(), c.Commands.Size(), c.Modals.Size()), "Client")

	c.StartTime = time.Now()

	return c.Session.Open()
}

// handleMessage routes prefixed messages to the registered prefix commands
func (c *ExtendedClient) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := ParseInvocation(c.Prefix, m.Content)
	if !ok {
		return
	}

	cmd, ok := c.PrefixCommands.Get(name)
	if !ok {
		logger.Debug("Comando desconocido: "+name, "Client")
		return
	}

	ctx := NewMessageContext(c, c.sender, m, cmd, args)

	if cmd.GuildOnly && m.GuildID == "" {
		_ = ctx.Reply("❌ Este comando solo puede usarse en un servidor.")
		return
	}

	if cmd.UserPermissions != 0 {
		perms, err := c.permissionsOf(m.Author.ID, m.ChannelID)
		if err != nil {
			logger.Warn("No se pudieron obtener los permisos de "+m.Author.ID+": "+err.Error(), "Client")
		}
		if err != nil || !HasPermission(perms, cmd.UserPermissions) {
			_ = ctx.Reply(permissionDenied)
			return
		}
	}

	c.runPrefix(ctx)
}

func (c *ExtendedClient) runPrefix(ctx *MessageContext) {
	defer botErrors.RecoverMiddleware()()

	if err := ctx.Command.Run(ctx); err != nil {
		logger.Error("Error ejecutando el comando "+ctx.Command.Name+": "+err.Error(), "Client")
		_ = ctx.Reply(genericFailure)
	}
}

// handleInteraction handles incoming Discord interactions
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		cmd, ok := c.Commands.Get(name)
		if !ok {
			logger.Warn("Comando no encontrado: "+name, "Client")
			return
		}
		if !interactionAllowed(i, cmd.UserPermissions) {
			_ = ctx.ReplyEphemeral(permissionDenied)
			return
		}
		c.runInteraction(name, cmd.Run, ctx)

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		key, _, _ := strings.Cut(customID, ":")
		modal, ok := c.Modals.Get(key)
		if !ok {
			logger.Warn("Modal no encontrado: "+customID, "Client")
			return
		}
		if !interactionAllowed(i, modal.UserPermissions) {
			_ = ctx.ReplyEphemeral(permissionDenied)
			return
		}
		c.runInteraction(key, modal.Run, ctx)
	}
}

func (c *ExtendedClient) runInteraction(name string, run CommandRunFunc, ctx *CommandContext) {
	defer botErrors.RecoverMiddleware()()

	if err := run(ctx); err != nil {
		logger.Error("Error ejecutando "+name+": "+err.Error(), "Client")
	}
}

// interactionAllowed checks the invoking member's resolved permissions.
// Interactions outside a guild carry no member and only pass ungated handlers.
func interactionAllowed(i *discordgo.InteractionCreate, required int64) bool {
	if required == 0 {
		return true
	}
	if i.Member == nil {
		return false
	}
	return HasPermission(i.Member.Permissions, required)
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// Uptime returns how long the client has been running
func (c *ExtendedClient) Uptime() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}
