package commands

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PancyStudios/HelperBotGo/internal/ai"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
)

// ChatArgs is the free text sent to the resolver.
type ChatArgs struct {
	Message string
}

func parseChatArgs(raw string) (ChatArgs, error) {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return ChatArgs{}, discord.Usagef("Debes escribir un mensaje.")
	}
	return ChatArgs{Message: msg}, nil
}

// SwitchAIArgs names the provider to prefer.
type SwitchAIArgs struct {
	Provider ai.ProviderName
}

func parseSwitchAIArgs(raw string) (SwitchAIArgs, error) {
	fields, err := splitArgs(raw)
	if err != nil {
		return SwitchAIArgs{}, err
	}
	if len(fields) == 0 {
		return SwitchAIArgs{}, discord.Usagef("¡Debes especificar el proveedor de IA!")
	}
	if len(fields) > 1 {
		return SwitchAIArgs{}, discord.Usagef("Solo se puede elegir un proveedor.")
	}
	name, err := ai.ParseProviderName(fields[0])
	if err != nil {
		return SwitchAIArgs{}, discord.Usagef("¡Proveedor inválido! Opciones: %s, %s, %s", ai.HuggingFace, ai.OpenAI, ai.Ollama)
	}
	return SwitchAIArgs{Provider: name}, nil
}

// CreateChannelArgs names the category and the text channel inside it.
type CreateChannelArgs struct {
	Category string
	Channel  string
}

func parseCreateChannelArgs(raw string) (CreateChannelArgs, error) {
	fields, err := splitArgs(raw)
	if err != nil {
		return CreateChannelArgs{}, err
	}
	if len(fields) != 2 {
		return CreateChannelArgs{}, discord.Usagef("Debes indicar la categoría y el canal. Usa comillas para nombres con espacios.")
	}
	args := CreateChannelArgs{
		Category: strings.TrimSpace(fields[0]),
		Channel:  strings.TrimSpace(fields[1]),
	}
	if args.Category == "" || args.Channel == "" {
		return CreateChannelArgs{}, discord.Usagef("El nombre de la categoría y del canal no pueden estar vacíos.")
	}
	return args, nil
}

// PurgeArgs is either a positive count or everything.
type PurgeArgs struct {
	Count int
	All   bool
}

func parsePurgeArgs(raw string) (PurgeArgs, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PurgeArgs{All: true}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return PurgeArgs{}, discord.Usagef("La cantidad debe ser un número entero.")
	}
	if n <= 0 {
		return PurgeArgs{}, discord.Usagef("La cantidad de mensajes a limpiar debe ser mayor que 0.")
	}
	return PurgeArgs{Count: n}, nil
}

// PlayArgs is a link or a free-text search.
type PlayArgs struct {
	Query string
}

func parsePlayArgs(raw string) (PlayArgs, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return PlayArgs{}, discord.Usagef("Debes indicar una canción o un enlace.")
	}
	return PlayArgs{Query: query}, nil
}

// AvatarArgs optionally names another user. Empty means the author.
type AvatarArgs struct {
	UserID string
}

var userRef = regexp.MustCompile(`^(?:<@!?(\d+)>|(\d{15,21}))$`)

func parseAvatarArgs(raw string) (AvatarArgs, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AvatarArgs{}, nil
	}
	m := userRef.FindStringSubmatch(raw)
	if m == nil {
		return AvatarArgs{}, discord.Usagef("Debes mencionar a un usuario.")
	}
	if m[1] != "" {
		return AvatarArgs{UserID: m[1]}, nil
	}
	return AvatarArgs{UserID: m[2]}, nil
}

func splitArgs(raw string) ([]string, error) {
	fields, err := discord.SplitArgs(raw)
	if errors.Is(err, discord.ErrUnterminatedQuote) {
		return nil, discord.Usagef("Hay comillas sin cerrar.")
	}
	return fields, err
}
