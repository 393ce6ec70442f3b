package music

// VoiceJoiner is the part of *discordgo.Session used to join and leave voice.
type VoiceJoiner interface {
	ChannelVoiceJoinManual(gID, cID string, mute, deaf bool) error
}

// SessionVoice connects the bot to voice through the gateway only, leaving
// audio to the node.
type SessionVoice struct {
	Session VoiceJoiner
}

// Join moves the bot into channelID, self-deafened.
func (v SessionVoice) Join(guildID, channelID string) error {
	return v.Session.ChannelVoiceJoinManual(guildID, channelID, false, true)
}

// Leave disconnects the bot from voice in guildID.
func (v SessionVoice) Leave(guildID string) error {
	return v.Session.ChannelVoiceJoinManual(guildID, "", false, false)
}
