package discord

import (
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// MaxMessageLength is the longest message content Discord accepts.
const MaxMessageLength = 2000

// TruncateMessage cuts content to MaxMessageLength runes, ending in an ellipsis when cut.
func TruncateMessage(content string) string {
	if utf8.RuneCountInString(content) <= MaxMessageLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxMessageLength-1]) + "…"
}

// MessageSender is the part of the Discord REST API used to answer
// prefix commands.
type MessageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

// PrefixCommand represents a text command invoked with the client prefix
type PrefixCommand struct {
	Name            string
	Description     string
	Usage           string
	Category        string
	UserPermissions int64
	GuildOnly       bool
	Run             PrefixRunFunc
}

// PrefixRunFunc is the function type for prefix command execution
type PrefixRunFunc func(ctx *MessageContext) error

// MessageContext provides context for prefix command execution
type MessageContext struct {
	Session *discordgo.Session
	Message *discordgo.MessageCreate
	Client  *ExtendedClient
	Command *PrefixCommand
	// Args is the raw text after the command name.
	Args   string
	Prefix string

	sender MessageSender
}

// NewMessageContext builds the context handed to a prefix command.
func NewMessageContext(client *ExtendedClient, sender MessageSender, m *discordgo.MessageCreate, cmd *PrefixCommand, args string) *MessageContext {
	ctx := &MessageContext{
		Message: m,
		Client:  client,
		Command: cmd,
		Args:    args,
		sender:  sender,
	}
	if client != nil {
		ctx.Session = client.Session
		ctx.Prefix = client.Prefix
	}
	return ctx
}

// NewPrefixCommand creates a new PrefixCommand with required fields
func NewPrefixCommand(name, description, category string, run PrefixRunFunc) *PrefixCommand {
	return &PrefixCommand{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithUsage sets the argument synopsis shown in help and usage replies
func (c *PrefixCommand) WithUsage(usage string) *PrefixCommand {
	c.Usage = usage
	return c
}

// WithUserPermissions sets required user permissions
func (c *PrefixCommand) WithUserPermissions(perms int64) *PrefixCommand {
	c.UserPermissions = perms
	c.GuildOnly = true
	return c
}

// InGuildOnly rejects invocations from direct messages
func (c *PrefixCommand) InGuildOnly() *PrefixCommand {
	c.GuildOnly = true
	return c
}

// Synopsis returns the command as typed by a user, e.g. "!purge [cantidad]".
func (c *PrefixCommand) Synopsis(prefix string) string {
	if c.Usage == "" {
		return prefix + c.Name
	}
	return prefix + c.Name + " " + c.Usage
}

// ParseInvocation splits content into a lowercase command name and the raw
// remainder. ok is false when content does not start with prefix.
func ParseInvocation(prefix, content string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(content[len(prefix):])
	if rest == "" {
		return "", "", false
	}
	name, args, _ = strings.Cut(rest, " ")
	if i := strings.IndexAny(name, "\n\t"); i >= 0 {
		args = name[i:] + " " + args
		name = name[:i]
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// Reply answers the invoking message
func (ctx *MessageContext) Reply(content string) error {
	_, err := ctx.sender.ChannelMessageSendComplex(ctx.ChannelID(), &discordgo.MessageSend{
		Content:         TruncateMessage(content),
		Reference:       ctx.Message.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	return err
}

// ReplyEmbed answers the invoking message with an embed
func (ctx *MessageContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := ctx.sender.ChannelMessageSendComplex(ctx.ChannelID(), &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{embed},
		Reference:       ctx.Message.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	return err
}

// Send posts a message to the invoking channel without a reference
func (ctx *MessageContext) Send(content string) error {
	_, err := ctx.sender.ChannelMessageSendComplex(ctx.ChannelID(), &discordgo.MessageSend{Content: TruncateMessage(content)})
	return err
}

// ReplyUsage answers with the reason and the command synopsis.
func (ctx *MessageContext) ReplyUsage(usage *UsageError) error {
	msg := "❌ " + usage.Reason
	if ctx.Command != nil {
		msg += "\nUso: `" + ctx.Command.Synopsis(ctx.Prefix) + "`"
	}
	return ctx.Reply(msg)
}

// Typing shows the typing indicator in the invoking channel
func (ctx *MessageContext) Typing() error {
	return ctx.sender.ChannelTyping(ctx.ChannelID())
}

// GuildID returns the guild the message was sent in, empty for DMs
func (ctx *MessageContext) GuildID() string {
	return ctx.Message.GuildID
}

// ChannelID returns the channel the message was sent in
func (ctx *MessageContext) ChannelID() string {
	return ctx.Message.ChannelID
}

// Author returns the user who sent the message
func (ctx *MessageContext) Author() *discordgo.User {
	return ctx.Message.Author
}
