package commands

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/HelperBotGo/internal/provision"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	createChannelModal = "create-channel"
	categoryInput      = "category"
	channelInput       = "channel"
)

// RegisterChannelCommands registers activation and provisioning commands
func RegisterChannelCommands(client *discord.ExtendedClient, st *State) {
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"activate-channel",
		"Activa las respuestas automáticas en este canal",
		"admin",
		st.activateChannel,
	).WithUserPermissions(discordgo.PermissionAdministrator))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"deactivate-channel",
		"Desactiva las respuestas automáticas en este canal",
		"admin",
		st.deactivateChannel,
	).WithUserPermissions(discordgo.PermissionAdministrator))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"create-channel",
		"Crea un canal de texto dentro de una categoría",
		"admin",
		discord.Typed(parseCreateChannelArgs, st.createChannel),
	).WithUsage(`<categoría> <canal>`).
		WithUserPermissions(discordgo.PermissionAdministrator))

	client.CommandHandler.RegisterCommand(discord.NewCommand(
		"create-channel",
		"Crear una categoría y un canal de texto",
		"admin",
		openCreateChannelModal,
	).WithUserPermissions(discordgo.PermissionAdministrator))

	client.CommandHandler.RegisterModal(discord.NewModal(
		createChannelModal,
		st.submitCreateChannel,
	).WithUserPermissions(discordgo.PermissionAdministrator))
}

func (st *State) activateChannel(ctx *discord.MessageContext) error {
	if !st.Activations.Activate(ctx.ChannelID()) {
		return ctx.Reply("⚠️ ¡El bot ya está activo en este canal!")
	}
	logger.Info("Canal activado: "+ctx.ChannelID(), "Channels")
	return ctx.Reply("✅ ¡Bot activado en este canal! Ahora responderé todos los mensajes aquí.")
}

func (st *State) deactivateChannel(ctx *discord.MessageContext) error {
	if !st.Activations.Deactivate(ctx.ChannelID()) {
		return ctx.Reply("⚠️ ¡El bot ya está desactivado en este canal!")
	}
	logger.Info("Canal desactivado: "+ctx.ChannelID(), "Channels")
	return ctx.Reply("✅ ¡Bot desactivado en este canal! Ya no responderé automáticamente.")
}

func (st *State) createChannel(ctx *discord.MessageContext, args CreateChannelArgs) error {
	return ctx.Reply(st.ensureChannel(ctx.GuildID(), args.Category, args.Channel))
}

func openCreateChannelModal(ctx *discord.CommandContext) error {
	return ctx.RespondModal(createChannelModal+":"+uuid.NewString(), "Crear canal y categoría",
		&discordgo.TextInput{
			CustomID:    categoryInput,
			Label:       "Nombre de la categoría",
			Style:       discordgo.TextInputShort,
			Placeholder: "Ej: Proyectos",
			Required:    true,
			MaxLength:   100,
		},
		&discordgo.TextInput{
			CustomID:    channelInput,
			Label:       "Nombre del canal de texto",
			Style:       discordgo.TextInputShort,
			Placeholder: "Ej: planificacion",
			Required:    true,
			MaxLength:   100,
		},
	)
}

func (st *State) submitCreateChannel(ctx *discord.CommandContext) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}
	msg := st.ensureChannel(ctx.Interaction.GuildID, ctx.ModalValue(categoryInput), ctx.ModalValue(channelInput))
	return ctx.FollowupEphemeral(msg)
}

// ensureChannel applies the provisioning policy and describes the outcome.
func (st *State) ensureChannel(guildID, category, channel string) string {
	res, err := st.Provisioner.EnsureChannel(guildID, category, channel)
	switch {
	case errors.Is(err, provision.ErrEmptyName):
		return "❌ El nombre de la categoría y del canal no pueden estar vacíos."
	case err != nil:
		logger.Error(fmt.Sprintf("Error creando el canal %s/%s en %s: %v", category, channel, guildID, err), "Channels")
		return "❌ No se pudo crear el canal: " + err.Error()
	}
	return provisionMessage(res)
}

func provisionMessage(res provision.Result) string {
	if !res.Created {
		return fmt.Sprintf("El canal **#%s** ya existe en la categoría **%s**.", res.Channel.Name, res.Category.Name)
	}
	return fmt.Sprintf("¡Canal **#%s** creado en la categoría **%s** con éxito!", res.Channel.Name, res.Category.Name)
}
