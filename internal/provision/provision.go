// Package provision creates a category and a text channel inside it, reusing
// whatever already exists with the same names.
package provision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/HelperBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ErrEmptyName is returned when a category or channel name is blank.
var ErrEmptyName = errors.New("el nombre de la categoría y del canal no pueden estar vacíos")

// ChannelAPI is the part of *discordgo.Session used for provisioning.
type ChannelAPI interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Result describes the outcome of EnsureChannel.
type Result struct {
	Category        *discordgo.Channel
	Channel         *discordgo.Channel
	CategoryCreated bool
	Created         bool
}

// Provisioner applies the create-if-missing policy.
type Provisioner struct {
	api ChannelAPI
}

// New returns a Provisioner over api.
func New(api ChannelAPI) *Provisioner {
	return &Provisioner{api: api}
}

// EnsureChannel finds or creates category categoryName and then a text
// channel channelName under it.
func (p *Provisioner) EnsureChannel(guildID, categoryName, channelName string) (Result, error) {
	categoryName = strings.TrimSpace(categoryName)
	channelName = strings.TrimSpace(channelName)
	if categoryName == "" || channelName == "" {
		return Result{}, ErrEmptyName
	}

	channels, err := p.api.GuildChannels(guildID)
	if err != nil {
		return Result{}, fmt.Errorf("error obteniendo los canales: %w", err)
	}

	var res Result
	res.Category = findChannel(channels, discordgo.ChannelTypeGuildCategory, categoryName, "")
	if res.Category == nil {
		res.Category, err = p.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
			Name: categoryName,
			Type: discordgo.ChannelTypeGuildCategory,
		})
		if err != nil {
			return Result{}, fmt.Errorf("error creando la categoría %q: %w", categoryName, err)
		}
		res.CategoryCreated = true
		logger.Info(fmt.Sprintf("Categoría %s creada en guild %s", categoryName, guildID), "Provision")
	}

	res.Channel = findChannel(channels, discordgo.ChannelTypeGuildText, channelName, res.Category.ID)
	if res.Channel != nil {
		return res, nil
	}

	res.Channel, err = p.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     channelName,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: res.Category.ID,
	})
	if err != nil {
		return res, fmt.Errorf("error creando el canal %q: %w", channelName, err)
	}
	res.Created = true
	logger.Info(fmt.Sprintf("Canal %s creado en %s (guild %s)", channelName, categoryName, guildID), "Provision")
	return res, nil
}

func findChannel(channels []*discordgo.Channel, typ discordgo.ChannelType, name, parentID string) *discordgo.Channel {
	for _, ch := range channels {
		if ch.Type != typ || ch.Name != name {
			continue
		}
		if parentID != "" && ch.ParentID != parentID {
			continue
		}
		return ch
	}
	return nil
}
