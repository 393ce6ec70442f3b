// Package commands provides music commands for the bot.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/HelperBotGo/internal/music"
	"github.com/PancyStudios/HelperBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// queuePreview is the number of upcoming tracks listed by !queue
const queuePreview = 10

// RegisterMusicCommands registers all music commands
func RegisterMusicCommands(client *discord.ExtendedClient, st *State) {
	// Play command
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"play",
		"Reproduce una canción o la añade a la cola",
		"music",
		discord.Typed(parsePlayArgs, st.play),
	).WithUsage("<canción o URL>").InGuildOnly())

	// Skip command
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"skip",
		"Salta a la siguiente canción",
		"music",
		st.skip,
	).InGuildOnly())

	// Queue command
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"queue",
		"Muestra la cola de reproducción",
		"music",
		st.queue,
	).InGuildOnly())

	// Stop command
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"stop",
		"Detiene la reproducción y limpia la cola",
		"music",
		st.stop,
	).InGuildOnly())

	// Pause command
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"pause",
		"Pausa la reproducción",
		"music",
		st.pause,
	).InGuildOnly())

	// Resume command
	client.CommandHandler.RegisterPrefixCommand(discord.NewPrefixCommand(
		"resume",
		"Reanuda la reproducción pausada",
		"music",
		st.resume,
	).InGuildOnly())
}

// play handles the !play command
func (st *State) play(ctx *discord.MessageContext, args PlayArgs) error {
	voiceState, err := st.Voice.VoiceState(ctx.GuildID(), ctx.Author().ID)
	if err != nil || voiceState == nil || voiceState.ChannelID == "" {
		return ctx.Reply("❌ Debes estar en un canal de voz.")
	}

	_ = ctx.Typing()

	c, cancel := operationContext()
	defer cancel()

	track, err := music.Search(c, st.Searcher, args.Query, st.SearchPrefix)
	if err != nil {
		var searchErr *music.SearchError
		switch {
		case errors.Is(err, music.ErrNoResults):
			return ctx.Reply("❌ No se encontraron resultados.")
		case errors.As(err, &searchErr):
			return ctx.Reply(fmt.Sprintf("❌ Error buscando: %s", searchErr.Message))
		}
		return err
	}

	res, err := st.Music.EnqueueAndMaybePlay(c, ctx.GuildID(), voiceState.ChannelID, ctx.ChannelID(), track)
	if err != nil {
		if errors.Is(err, music.ErrVoiceConnect) {
			return ctx.Reply("❌ No pude conectarme al canal de voz.")
		}
		return ctx.Reply(fmt.Sprintf("❌ Error reproduciendo: %v", err))
	}

	return ctx.ReplyEmbed(trackEmbed(res))
}

func trackEmbed(res music.EnqueueResult) *discordgo.MessageEmbed {
	track := res.Track
	embed := &discordgo.MessageEmbed{
		Color:       embedColor,
		Title:       "🎵 Añadido a la cola",
		Description: trackLink(track),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artista",
				Value:  orDash(track.Author),
				Inline: true,
			},
			{
				Name:   "Duración",
				Value:  music.FormatDuration(track.Length),
				Inline: true,
			},
		},
	}
	if res.Started {
		embed.Title = "🎵 Reproduciendo ahora"
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Posición",
			Value:  fmt.Sprintf("%d", res.Position),
			Inline: true,
		})
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}
	return embed
}

// skip handles the !skip command
func (st *State) skip(ctx *discord.MessageContext) error {
	c, cancel := operationContext()
	defer cancel()

	next, err := st.Music.Skip(c, ctx.GuildID())
	switch {
	case errors.Is(err, music.ErrNothingPlaying):
		return ctx.Reply("❌ No hay nada reproduciéndose.")
	case err != nil:
		return ctx.Reply(fmt.Sprintf("❌ Error: %v", err))
	case next == nil:
		return ctx.Reply("⏹️ No hay más canciones en la cola. Desconectando.")
	}
	return ctx.Reply("⏭️ Canción saltada. Ahora suena: " + trackLink(*next))
}

// queue handles the !queue command
func (st *State) queue(ctx *discord.MessageContext) error {
	return ctx.Reply(formatQueue(st.Music.Snapshot(ctx.GuildID())))
}

func formatQueue(snap music.Snapshot) string {
	if snap.Current == nil && len(snap.Queue) == 0 {
		return "📭 La cola está vacía."
	}

	var sb strings.Builder
	sb.WriteString("📋 **Cola de reproducción**\n\n")

	if snap.Current != nil {
		status := "Reproduciendo"
		if snap.State == music.StatePaused {
			status = "En pausa"
		}
		sb.WriteString(fmt.Sprintf("🎵 **%s:** %s - %s\n\n",
			status, trackLink(*snap.Current), music.FormatDuration(snap.Current.Length)))
	}

	if len(snap.Queue) > 0 {
		sb.WriteString("**Siguiente:**\n")
		for i, track := range snap.Queue {
			if i >= queuePreview {
				sb.WriteString(fmt.Sprintf("\n... y %d más", len(snap.Queue)-queuePreview))
				break
			}
			sb.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Title, music.FormatDuration(track.Length)))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// stop handles the !stop command
func (st *State) stop(ctx *discord.MessageContext) error {
	c, cancel := operationContext()
	defer cancel()

	if err := st.Music.Stop(c, ctx.GuildID()); err != nil {
		return ctx.Reply(fmt.Sprintf("❌ Error: %v", err))
	}
	return ctx.Reply("⏹️ Reproducción detenida y cola limpiada.")
}

// pause handles the !pause command
func (st *State) pause(ctx *discord.MessageContext) error {
	c, cancel := operationContext()
	defer cancel()

	switch err := st.Music.Pause(c, ctx.GuildID()); {
	case errors.Is(err, music.ErrNotPlaying):
		return ctx.Reply("❌ No hay nada reproduciéndose.")
	case err != nil:
		return ctx.Reply(fmt.Sprintf("❌ Error: %v", err))
	}
	return ctx.Reply("⏸️ Reproducción pausada.")
}

// resume handles the !resume command
func (st *State) resume(ctx *discord.MessageContext) error {
	c, cancel := operationContext()
	defer cancel()

	switch err := st.Music.Resume(c, ctx.GuildID()); {
	case errors.Is(err, music.ErrNotPaused):
		return ctx.Reply("❌ La reproducción no está pausada.")
	case err != nil:
		return ctx.Reply(fmt.Sprintf("❌ Error: %v", err))
	}
	return ctx.Reply("▶️ Reproducción reanudada.")
}

func trackLink(t music.Track) string {
	if t.URI == "" {
		return "**" + t.Title + "**"
	}
	return fmt.Sprintf("[%s](%s)", t.Title, t.URI)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
