package music

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/embed"
	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/internal/music/source_resolver"
	"github.com/keshon/fzmusic/pkg/cmd"
)

type PlayCommand struct{ *Deps }

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song or add it to the queue (direct URLs only)" }
func (c *PlayCommand) Aliases() []string   { return []string{"p"} }
func (c *PlayCommand) Usage() string       { return "<url>" }

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	input := strings.TrimSpace(strings.Join(inv.Args, " "))
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return mc.Respond.Reply(fmt.Sprintf("❌ Only direct URLs are accepted. Use `%sp https://www.youtube.com/watch?v=...`", mc.Prefix))
	}

	c.Player.Bind(mc.GuildID, mc.ChannelID)

	voiceChannel, err := c.Voice.UserVoiceChannel(mc.GuildID, mc.Author.ID)
	if err != nil {
		return mc.Respond.Reply(msgNotInVoice)
	}
	if err := c.Player.JoinVoice(ctx, mc.GuildID, voiceChannel); err != nil {
		if errors.Is(err, player.ErrNotInVoice) {
			return mc.Respond.Reply(msgNotInVoice)
		}
		if rerr := mc.Respond.Reply("Could not join voice channel."); rerr != nil {
			return rerr
		}
		return err
	}

	song, err := c.Resolver.Resolve(ctx, input, mc.Author)
	if err != nil {
		switch {
		case errors.Is(err, source_resolver.ErrNoAudio), errors.Is(err, source_resolver.ErrResolveFailed):
			return mc.Respond.Reply("Couldn't extract any audio from that URL.")
		default:
			return mc.Respond.Reply(fmt.Sprintf("An error occurred: %v", err))
		}
	}

	res, err := c.Player.EnqueueAndMaybeStart(ctx, mc.GuildID, mc.ChannelID, song)
	if err != nil {
		switch {
		case errors.Is(err, player.ErrNotConnected):
			return mc.Respond.Reply(msgNotConnected)
		case errors.Is(err, player.ErrNoPlayable):
			return mc.Respond.Reply(fmt.Sprintf("❌ Couldn't play **%s**.", song.Title))
		}
		return mc.Respond.Reply(fmt.Sprintf("An error occurred: %v", err))
	}
	if res.Started {
		return nil
	}

	return mc.Respond.ReplyEmbed(embed.Basic(
		"✅ Added to queue",
		fmt.Sprintf("Added **%s** to the queue (position %d).", song.Title, res.Position),
	))
}
