package commands

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/config"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// RegisterStatsCommands registers ping and stats
func RegisterStatsCommands(client *discord.ExtendedClient, st *State) {
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"ping",
		"Comprueba la latencia del bot",
		"general",
		func(ctx *discord.MessageContext) error {
			latency := ctx.Session.HeartbeatLatency().Milliseconds()
			return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", latency))
		},
	))

	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"stats",
		"Muestra estadísticas del bot",
		"general",
		func(ctx *discord.MessageContext) error {
			return ctx.ReplyEmbed(st.statsEmbed(ctx.Client))
		},
	))
}

func (st *State) statsEmbed(client *discord.ExtendedClient) *discordgo.MessageEmbed {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	fields := []*discordgo.MessageEmbedField{
		{Name: "🤖 Versión del Bot", Value: config.Version, Inline: true},
		{Name: "🐹 Versión de Go", Value: strings.TrimPrefix(runtime.Version(), "go"), Inline: true},
		{Name: "📚 Versión de DiscordGo", Value: discordgo.VERSION, Inline: true},
		{Name: "🖥 Uso de RAM", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
		{Name: "⚙️ Goroutines", Value: fmt.Sprintf("%d / %d CPUs", runtime.NumGoroutine(), runtime.NumCPU()), Inline: true},
		{Name: "⏱ Uptime", Value: formatUptime(client.Uptime()), Inline: true},
		{Name: "🏠 Servidores", Value: fmt.Sprintf("%d", client.GuildCount()), Inline: true},
	}
	if st.AI != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🧠 Proveedor de IA", Value: string(st.AI.Current()), Inline: true})
	}
	if st.Activations != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "💬 Canales activos", Value: fmt.Sprintf("%d", st.Activations.Len()), Inline: true})
	}
	if st.Music != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🎵 Colas de música", Value: fmt.Sprintf("%d", len(st.Music.Guilds())), Inline: true})
	}

	return &discordgo.MessageEmbed{
		Title:     "📊 Estadísticas del Bot",
		Color:     embedColor,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// formatUptime formats a duration as days, hours, minutes and seconds
func formatUptime(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d días", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d horas", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutos", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d segundos", seconds))
	}

	return strings.Join(parts, ", ")
}
