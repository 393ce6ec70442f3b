package commands

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x5865F2 // Blurple

// RegisterGeneralCommands registers help, hello and avatar
func RegisterGeneralCommands(client *discord.ExtendedClient) {
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"help",
		"Muestra los comandos disponibles",
		"general",
		helpHandler,
	))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"hello",
		"Comprueba que el bot funciona",
		"general",
		func(ctx *discord.MessageContext) error {
			return ctx.Reply("¡Hola! 👋 ¿Cómo puedo ayudarte?")
		},
	))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"avatar",
		"Muestra el avatar de un usuario",
		"general",
		discord.Typed(parseAvatarArgs, avatarHandler),
	).WithUsage("[@usuario]"))
}

// helpHandler lists every registered command
func helpHandler(ctx *discord.MessageContext) error {
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Color:       embedColor,
		Title:       "📖 Ayuda del Bot",
		Description: helpText(ctx.Client),
	})
}

func helpText(client *discord.ExtendedClient) string {
	var sb strings.Builder
	sb.WriteString("**Comandos disponibles:**\n")
	for _, cmd := range client.PrefixCommands.Sorted() {
		sb.WriteString(fmt.Sprintf("`%s` - %s\n", cmd.Synopsis(client.Prefix), cmd.Description))
	}
	for _, cmd := range client.Commands.Sorted() {
		sb.WriteString(fmt.Sprintf("`/%s` - %s\n", cmd.Name, cmd.Description))
	}
	sb.WriteString("\n**Ejemplos:**\n")
	sb.WriteString(fmt.Sprintf("`%schat Hola, ¿cómo estás?`\n", client.Prefix))
	sb.WriteString(fmt.Sprintf("`%screate-channel \"General\" \"charla\"`", client.Prefix))
	return sb.String()
}

func avatarHandler(ctx *discord.MessageContext, args AvatarArgs) error {
	user, err := resolveUser(ctx, args.UserID)
	if err != nil {
		return ctx.Reply("❌ No se encontró al usuario.")
	}
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Color: embedColor,
		Title: "Avatar de " + user.DisplayName(),
		Image: &discordgo.MessageEmbedImage{URL: user.AvatarURL("1024")},
	})
}

// resolveUser prefers the message mentions over a REST lookup.
func resolveUser(ctx *discord.MessageContext, userID string) (*discordgo.User, error) {
	if userID == "" {
		return ctx.Author(), nil
	}
	for _, u := range ctx.Message.Mentions {
		if u.ID == userID {
			return u, nil
		}
	}
	if ctx.Session == nil {
		return nil, discordgo.ErrStateNotFound
	}
	return ctx.Session.User(userID)
}
