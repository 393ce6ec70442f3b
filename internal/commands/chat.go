package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/HelperBotGo/internal/ai"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

var credentialVars = map[ai.ProviderName]string{
	ai.HuggingFace: "HF_TOKEN",
	ai.OpenAI:      "OPENAI_KEY",
	ai.Ollama:      "OLLAMA_URL",
}

// RegisterChatCommands registers the resolver commands
func RegisterChatCommands(client *discord.ExtendedClient, st *State) {
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"chat",
		"Conversa con el bot",
		"chat",
		discord.Typed(parseChatArgs, st.chat),
	).WithUsage("<mensaje>"))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"switch-ai",
		"Cambia el proveedor de IA",
		"admin",
		discord.Typed(parseSwitchAIArgs, st.switchAI),
	).WithUsage("<huggingface|openai|ollama>").
		WithUserPermissions(discordgo.PermissionAdministrator))
}

func (st *State) chat(ctx *discord.MessageContext, args ChatArgs) error {
	return st.Answer(ctx, args.Message)
}

// Answer shows the typing indicator, resolves text and replies with the result.
func (st *State) Answer(ctx *discord.MessageContext, text string) error {
	if err := ctx.Typing(); err != nil {
		logger.Debug("No se pudo mostrar el indicador de escritura: "+err.Error(), "Chat")
	}

	// Each provider attempt carries its own timeout, so the chain has no overall deadline.
	return ctx.Reply(st.AI.Resolve(context.Background(), text))
}

func (st *State) switchAI(ctx *discord.MessageContext, args SwitchAIArgs) error {
	name, err := st.AI.Switch(string(args.Provider))
	switch {
	case errors.Is(err, ai.ErrMissingCredentials):
		return ctx.Reply(fmt.Sprintf("⚠️ ¡El proveedor %s no está configurado! Añade %s al archivo .env", args.Provider, credentialVars[args.Provider]))
	case errors.Is(err, ai.ErrUnknownProvider):
		return ctx.ReplyUsage(discord.Usagef("¡Proveedor inválido! Opciones: %s, %s, %s", ai.HuggingFace, ai.OpenAI, ai.Ollama))
	case err != nil:
		return err
	}
	return ctx.Reply(fmt.Sprintf("✅ Proveedor de IA cambiado a: %s", name))
}
