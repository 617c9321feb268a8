package music

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/embed"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/pkg/cmd"
)

type QueueCommand struct{ *Deps }

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the playback queue" }
func (c *QueueCommand) Aliases() []string   { return []string{"q", "qu"} }
func (c *QueueCommand) Usage() string       { return "[page]" }

func (c *QueueCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	page := 1
	if len(inv.Args) > 0 {
		if n, err := strconv.Atoi(inv.Args[0]); err == nil {
			page = n
		}
	}

	snap := c.Player.Snapshot(mc.GuildID)
	p, ok := embed.Paginate(snap.Current, snap.Pending, page, c.PageSize)
	if !ok {
		return mc.Respond.Reply(fmt.Sprintf("The queue is empty. Add songs with `%splay`!", mc.Prefix))
	}
	p.Status = fmt.Sprintf("%s %s", snap.State.StringEmoji(), snap.State)
	return mc.Respond.ReplyEmbed(embed.Queue(p))
}

type NowPlayingCommand struct{ *Deps }

func (c *NowPlayingCommand) Name() string        { return "nowplaying" }
func (c *NowPlayingCommand) Description() string { return "Show the song that is playing" }
func (c *NowPlayingCommand) Aliases() []string   { return []string{"np"} }

func (c *NowPlayingCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	song, err := c.Player.NowPlaying(mc.GuildID)
	if err != nil {
		return mc.Respond.Reply(msgNothingPlaying)
	}
	return mc.Respond.ReplyEmbed(embed.NowPlaying(song))
}

type RemoveCommand struct{ *Deps }

func (c *RemoveCommand) Name() string        { return "remove" }
func (c *RemoveCommand) Description() string { return "Remove a song from the queue by its number" }
func (c *RemoveCommand) Usage() string       { return "<number>" }

func (c *RemoveCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	pos := 0
	if len(inv.Args) > 0 {
		pos, _ = strconv.Atoi(inv.Args[0])
	}

	removed, err := c.Player.Remove(mc.GuildID, pos)
	if errors.Is(err, queue.ErrOutOfRange) {
		return mc.Respond.Reply(fmt.Sprintf("Invalid index. Queue has %d songs.", len(c.Player.Snapshot(mc.GuildID).Pending)))
	}
	if err != nil {
		return mc.Respond.Reply("Failed to remove the song.")
	}
	return mc.Respond.Reply(fmt.Sprintf("🗑️ Removed **%s** from the queue.", removed.Title))
}

type ClearCommand struct{ *Deps }

func (c *ClearCommand) Name() string        { return "clear" }
func (c *ClearCommand) Description() string { return "Clear the queue" }

func (c *ClearCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}
	c.Player.Clear(mc.GuildID)
	return mc.Respond.Reply("🧹 Queue cleared.")
}
