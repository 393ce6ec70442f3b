// Package purge deletes recent messages from a channel, bulk where Discord
// allows it and one by one where it does not.
package purge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const (
	pageSize = 100
	// Discord rejects bulk deletes of messages older than two weeks.
	bulkMaxAge = 14 * 24 * time.Hour
	// extraMessages covers the invoking command and the progress notice.
	extraMessages = 2
)

// ErrInvalidCount is returned when the requested amount is not positive.
var ErrInvalidCount = errors.New("la cantidad de mensajes a limpiar debe ser mayor que 0")

// MessageAPI is the part of *discordgo.Session used for purging.
type MessageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Purger deletes messages through api, pacing calls with a limiter.
type Purger struct {
	api        MessageAPI
	limiter    *rate.Limiter
	confirmTTL time.Duration
	now        func() time.Time
}

// Option customizes a Purger.
type Option func(*Purger)

// WithLimiter replaces the default pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Purger) { p.limiter = l }
}

// WithConfirmTTL sets how long the confirmation message stays.
func WithConfirmTTL(d time.Duration) Option {
	return func(p *Purger) { p.confirmTTL = d }
}

// New returns a Purger over api.
func New(api MessageAPI, opts ...Option) *Purger {
	p := &Purger{
		api:        api,
		limiter:    rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
		confirmTTL: 5 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Purge deletes the count most recent messages plus the command and the
// notice, then posts a confirmation that removes itself.
func (p *Purger) Purge(ctx context.Context, channelID string, count int) (int, error) {
	if count <= 0 {
		return 0, ErrInvalidCount
	}

	if _, err := p.api.ChannelMessageSend(channelID, fmt.Sprintf("🗑️ Limpiando %d mensajes...", count)); err != nil {
		return 0, fmt.Errorf("error enviando aviso: %w", err)
	}

	deleted, err := p.deleteRecent(ctx, channelID, count+extraMessages)
	if err != nil {
		return deleted, err
	}

	p.confirm(channelID, fmt.Sprintf("✅ ¡Chat limpio! Se eliminaron %d mensajes.", count))
	logger.Info(fmt.Sprintf("%d mensajes eliminados en canal %s", deleted, channelID), "Purge")
	return deleted, nil
}

// PurgeAll deletes every message it can retrieve from the channel.
func (p *Purger) PurgeAll(ctx context.Context, channelID string) (int, error) {
	if _, err := p.api.ChannelMessageSend(channelID, "🗑️ Limpiando todos los mensajes..."); err != nil {
		return 0, fmt.Errorf("error enviando aviso: %w", err)
	}

	deleted, err := p.deleteRecent(ctx, channelID, -1)
	if err != nil {
		return deleted, err
	}

	p.confirm(channelID, "✅ ¡Chat limpio! Se eliminaron todos los mensajes.")
	logger.Info(fmt.Sprintf("%d mensajes eliminados en canal %s (todos)", deleted, channelID), "Purge")
	return deleted, nil
}

// deleteRecent deletes up to limit messages, newest first. A negative limit
// means no limit.
func (p *Purger) deleteRecent(ctx context.Context, channelID string, limit int) (int, error) {
	deleted := 0
	beforeID := ""

	for limit < 0 || deleted < limit {
		want := pageSize
		if limit >= 0 && limit-deleted < want {
			want = limit - deleted
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return deleted, err
		}
		page, err := p.api.ChannelMessages(channelID, want, beforeID, "", "")
		if err != nil {
			return deleted, fmt.Errorf("error obteniendo mensajes: %w", err)
		}
		if len(page) == 0 {
			break
		}

		n, err := p.deletePage(ctx, channelID, page)
		deleted += n
		if err != nil {
			return deleted, err
		}

		beforeID = page[len(page)-1].ID
		if len(page) < want {
			break
		}
	}
	return deleted, nil
}

func (p *Purger) deletePage(ctx context.Context, channelID string, page []*discordgo.Message) (int, error) {
	var young, old []string
	cutoff := p.now().Add(-bulkMaxAge)
	for _, msg := range page {
		if messageTime(msg).After(cutoff) {
			young = append(young, msg.ID)
		} else {
			old = append(old, msg.ID)
		}
	}

	deleted := 0
	if len(young) >= 2 {
		if err := p.limiter.Wait(ctx); err != nil {
			return deleted, err
		}
		if err := p.api.ChannelMessagesBulkDelete(channelID, young); err != nil {
			return deleted, fmt.Errorf("error en borrado masivo: %w", err)
		}
		deleted += len(young)
	} else {
		old = append(young, old...)
	}

	for _, id := range old {
		if err := p.limiter.Wait(ctx); err != nil {
			return deleted, err
		}
		if err := p.api.ChannelMessageDelete(channelID, id); err != nil {
			return deleted, fmt.Errorf("error eliminando mensaje %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

func messageTime(msg *discordgo.Message) time.Time {
	if !msg.Timestamp.IsZero() {
		return msg.Timestamp
	}
	if t, err := discordgo.SnowflakeTimestamp(msg.ID); err == nil {
		return t
	}
	return time.Time{}
}

// confirm posts content and deletes it after confirmTTL.
func (p *Purger) confirm(channelID, content string) {
	msg, err := p.api.ChannelMessageSend(channelID, content)
	if err != nil {
		logger.Warn(fmt.Sprintf("Error enviando confirmación de limpieza: %v", err), "Purge")
		return
	}
	time.AfterFunc(p.confirmTTL, func() {
		if err := p.api.ChannelMessageDelete(channelID, msg.ID); err != nil {
			logger.Debug(fmt.Sprintf("Error eliminando confirmación: %v", err), "Purge")
		}
	})
}
