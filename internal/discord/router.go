package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/embed"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/pkg/cmd"
	"github.com/rs/zerolog"
)

// Router turns prefixed chat messages into command invocations.
type Router struct {
	prefix   string
	registry *cmd.Registry
	log      zerolog.Logger
}

func NewRouter(prefix string, registry *cmd.Registry, logger zerolog.Logger) *Router {
	return &Router{prefix: prefix, registry: registry, log: logger}
}

// parse splits "fz!play url" into ("play", ["url"]).
func (r *Router) parse(content string) (string, []string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(content), r.prefix)
	if !ok {
		return "", nil, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch runs the command named in content, if any. It reports whether
// a command was found.
func (r *Router) Dispatch(ctx context.Context, guildID, channelID string, author queue.Requester, content string, respond command.Responder) bool {
	name, args, ok := r.parse(content)
	if !ok {
		return false
	}
	c := r.registry.Get(name)
	if c == nil {
		r.log.Debug().Str("command", name).Str("guild", guildID).Msg("Unknown command")
		return false
	}

	inv := &cmd.Invocation{
		Name: name,
		Args: args,
		Data: &command.MessageContext{
			GuildID:   guildID,
			ChannelID: channelID,
			Author:    author,
			Prefix:    r.prefix,
			Respond:   respond,
		},
	}
	if err := c.Run(ctx, inv); err != nil {
		r.log.Error().Err(err).Str("command", name).Str("guild", guildID).Msg("Error running command")
		if rerr := respond.ReplyEmbed(embed.Basic("Error", fmt.Sprintf("Error running command: %v", err))); rerr != nil {
			r.log.Warn().Err(rerr).Msg("Failed to report command error")
		}
	}
	return true
}

func requesterOf(m *discordgo.MessageCreate) queue.Requester {
	name := m.Author.Username
	if m.Author.GlobalName != "" {
		name = m.Author.GlobalName
	}
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}
	return queue.Requester{ID: m.Author.ID, Name: name, Mention: m.Author.Mention()}
}
