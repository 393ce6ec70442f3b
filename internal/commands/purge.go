package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/HelperBotGo/internal/purge"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// purgeTimeout is longer than operationTimeout since deletes are paced.
const purgeTimeout = 10 * time.Minute

// RegisterPurgeCommands registers the message purge commands
func RegisterPurgeCommands(client *discord.ExtendedClient, st *State) {
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"purge",
		"Elimina los últimos mensajes del canal, o todos si no se indica cantidad",
		"admin",
		discord.Typed(parsePurgeArgs, st.purge),
	).WithUsage("[cantidad]").
		WithUserPermissions(discordgo.PermissionAdministrator))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"purge-all",
		"Elimina todos los mensajes del canal",
		"admin",
		func(ctx *discord.MessageContext) error {
			return st.purge(ctx, PurgeArgs{All: true})
		},
	).WithUserPermissions(discordgo.PermissionAdministrator))
}

func (st *State) purge(ctx *discord.MessageContext, args PurgeArgs) error {
	c, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	var err error
	if args.All {
		_, err = st.Purger.PurgeAll(c, ctx.ChannelID())
	} else {
		_, err = st.Purger.Purge(c, ctx.ChannelID(), args.Count)
	}

	switch {
	case errors.Is(err, purge.ErrInvalidCount):
		return ctx.ReplyUsage(discord.Usagef("La cantidad de mensajes a limpiar debe ser mayor que 0."))
	case err != nil:
		return ctx.Send(fmt.Sprintf("❌ Error al limpiar el chat: %v", err))
	}
	return nil
}
