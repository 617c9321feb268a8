package command

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/pkg/cmd"
)

// Responder sends replies to the channel a command came from.
type Responder interface {
	Reply(content string) error
	ReplyEmbed(embed *discordgo.MessageEmbed) error
}

// MessageContext is what the message router hands to every command through
// cmd.Invocation.Data.
type MessageContext struct {
	GuildID   string
	ChannelID string
	Author    queue.Requester
	Prefix    string
	Respond   Responder
}

// Message extracts the MessageContext from inv.
func Message(inv *cmd.Invocation) (*MessageContext, bool) {
	if inv == nil {
		return nil, false
	}
	mc, ok := inv.Data.(*MessageContext)
	return mc, ok && mc != nil
}
