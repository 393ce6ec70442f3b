// Package events provides event handlers for message events
package events

import (
	"strings"

	"github.com/PancyStudios/HelperBotGo/internal/commands"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/errors"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient, st *commands.State) {
	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		autoRespond(client, s, st, m)
	})
}

// autoRespond answers every non-command message in an activated channel.
func autoRespond(client *discord.ExtendedClient, sender discord.MessageSender, st *commands.State, m *discordgo.MessageCreate) {
	defer errors.RecoverMiddleware()()

	if !shouldAutoRespond(client.Prefix, st, m) {
		return
	}

	ctx := discord.NewMessageContext(client, sender, m, nil, m.Content)
	if err := st.Answer(ctx, m.Content); err != nil {
		logger.Error("Error respondiendo en canal activo "+m.ChannelID+": "+err.Error(), "Message")
	}
}

func shouldAutoRespond(prefix string, st *commands.State, m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.Bot {
		return false
	}
	if strings.TrimSpace(m.Content) == "" || strings.HasPrefix(m.Content, prefix) {
		return false
	}
	return st.Activations.IsActive(m.ChannelID)
}
