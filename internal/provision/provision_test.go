package provision

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuild struct {
	mu        sync.Mutex
	channels  []*discordgo.Channel
	nextID    int
	createErr error
	listErr   error
}

func (g *fakeGuild) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return append([]*discordgo.Channel(nil), g.channels...), nil
}

func (g *fakeGuild) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	ch := &discordgo.Channel{
		ID:       fmt.Sprintf("%d", g.nextID),
		GuildID:  guildID,
		Name:     data.Name,
		Type:     data.Type,
		ParentID: data.ParentID,
	}
	g.channels = append(g.channels, ch)
	return ch, nil
}

func (g *fakeGuild) count(typ discordgo.ChannelType, name string) int {
	n := 0
	for _, ch := range g.channels {
		if ch.Type == typ && ch.Name == name {
			n++
		}
	}
	return n
}

func TestEnsureChannelIsIdempotent(t *testing.T) {
	guild := &fakeGuild{}
	p := New(guild)

	first, err := p.EnsureChannel("g", "Team", "general")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.CategoryCreated)
	assert.Equal(t, first.Category.ID, first.Channel.ParentID)

	second, err := p.EnsureChannel("g", "Team", "general")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.False(t, second.CategoryCreated)
	assert.Equal(t, first.Channel.ID, second.Channel.ID)

	assert.Equal(t, 1, guild.count(discordgo.ChannelTypeGuildCategory, "Team"))
	assert.Equal(t, 1, guild.count(discordgo.ChannelTypeGuildText, "general"))
}

func TestEnsureChannelReusesCategory(t *testing.T) {
	guild := &fakeGuild{channels: []*discordgo.Channel{
		{ID: "cat", Name: "Team", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "other", Name: "general", Type: discordgo.ChannelTypeGuildText, ParentID: "elsewhere"},
	}}
	p := New(guild)

	res, err := p.EnsureChannel("g", " Team ", "general")
	require.NoError(t, err)
	assert.False(t, res.CategoryCreated)
	assert.True(t, res.Created)
	assert.Equal(t, "cat", res.Channel.ParentID)
}

func TestEnsureChannelEmptyNames(t *testing.T) {
	guild := &fakeGuild{}
	p := New(guild)

	_, err := p.EnsureChannel("g", "  ", "general")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = p.EnsureChannel("g", "Team", "")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Empty(t, guild.channels)
}

func TestEnsureChannelCreateFailure(t *testing.T) {
	guild := &fakeGuild{createErr: errors.New("missing permissions")}
	p := New(guild)

	_, err := p.EnsureChannel("g", "Team", "general")
	assert.ErrorContains(t, err, "missing permissions")
}

func TestEnsureChannelListFailure(t *testing.T) {
	guild := &fakeGuild{listErr: errors.New("unauthorized")}
	_, err := New(guild).EnsureChannel("g", "Team", "general")
	assert.Error(t, err)
}

func TestEnsureChannelMatchesCategoryExactly(t *testing.T) {
	guild := &fakeGuild{channels: []*discordgo.Channel{
		{ID: "c1", Name: "team", Type: discordgo.ChannelTypeGuildCategory},
	}}
	p := New(guild)

	res, err := p.EnsureChannel("g", "Team", "general")
	require.NoError(t, err)
	assert.True(t, res.CategoryCreated)
	assert.NotEqual(t, "c1", res.Category.ID)
	assert.Equal(t, 1, guild.count(discordgo.ChannelTypeGuildCategory, "team"))
	assert.Equal(t, 1, guild.count(discordgo.ChannelTypeGuildCategory, "Team"))
}
