package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestCommandCreation verifies that commands can be created with the builder pattern
func TestCommandCreation(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("create-channel", "Crea un canal", "admin", handler)

	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}

	if cmd.Name != "create-channel" {
		t.Errorf("Name = %v, want %v", cmd.Name, "create-channel")
	}

	if cmd.Category != "admin" {
		t.Errorf("Category = %v, want %v", cmd.Category, "admin")
	}

	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
}

// TestToApplicationCommand verifies conversion to Discord application command
func TestToApplicationCommand(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("test", "Test command", "test", handler).
		WithUserPermissions(discordgo.PermissionAdministrator)

	appCmd := cmd.ToApplicationCommand()

	if appCmd.Name != "test" {
		t.Errorf("ApplicationCommand Name = %v, want %v", appCmd.Name, "test")
	}

	if appCmd.Description != "Test command" {
		t.Errorf("ApplicationCommand Description = %v, want %v", appCmd.Description, "Test command")
	}

	if appCmd.DefaultMemberPermissions == nil || *appCmd.DefaultMemberPermissions != discordgo.PermissionAdministrator {
		t.Errorf("DefaultMemberPermissions = %v, want administrator", appCmd.DefaultMemberPermissions)
	}
}

// TestToApplicationCommandWithoutPermissions leaves the default permissions unset
func TestToApplicationCommandWithoutPermissions(t *testing.T) {
	cmd := NewCommand("hello", "Saludo", "general", func(ctx *CommandContext) error { return nil })

	if cmd.ToApplicationCommand().DefaultMemberPermissions != nil {
		t.Error("DefaultMemberPermissions should be nil")
	}
}

func TestModalValue(t *testing.T) {
	ctx := &CommandContext{Interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionModalSubmit,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: "create-channel:abc",
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "category", Value: "Team A"},
				}},
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: "channel", Value: "general"},
				}},
			},
		},
	}}}

	if got := ctx.ModalValue("category"); got != "Team A" {
		t.Errorf("ModalValue(category) = %q", got)
	}
	if got := ctx.ModalValue("channel"); got != "general" {
		t.Errorf("ModalValue(channel) = %q", got)
	}
	if got := ctx.ModalValue("missing"); got != "" {
		t.Errorf("ModalValue(missing) = %q", got)
	}
}
