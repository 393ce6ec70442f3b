package discord

import "github.com/bwmarrin/discordgo"

// HasPermission reports whether perms grants every bit of required.
// Administrator grants everything.
func HasPermission(perms, required int64) bool {
	if required == 0 {
		return true
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&required == required
}

// PermissionResolver computes a user's effective permissions in a channel.
type PermissionResolver func(userID, channelID string) (int64, error)

const permissionDenied = "🚫 No tienes permisos para usar este comando."
