package music

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/music/player"
	"github.com/keshon/fzmusic/pkg/cmd"
)

type SkipCommand struct{ *Deps }

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current song" }
func (c *SkipCommand) Aliases() []string   { return []string{"s"} }

func (c *SkipCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	c.Player.Bind(mc.GuildID, mc.ChannelID)

	skipped, err := c.Player.Skip(mc.GuildID)
	if err != nil {
		return mc.Respond.Reply("❌ No song is playing right now.")
	}
	return mc.Respond.Reply(fmt.Sprintf("⏭️ **Skipped:** %s", skipped.Title))
}

type StopCommand struct{ *Deps }

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback and clear the queue" }

func (c *StopCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}
	if err := c.Player.Stop(mc.GuildID); err != nil {
		return mc.Respond.Reply(msgNothingPlaying)
	}
	return mc.Respond.Reply("⏹️ Playback stopped and queue cleared.")
}

type PauseCommand struct{ *Deps }

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current song" }

func (c *PauseCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}
	if err := c.Player.Pause(mc.GuildID); err != nil {
		return mc.Respond.Reply(msgNothingPlaying)
	}
	return mc.Respond.Reply("⏸️ Paused.")
}

type ResumeCommand struct{ *Deps }

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume the paused song" }

func (c *ResumeCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	err := c.Player.Resume(mc.GuildID)
	switch {
	case err == nil:
		return mc.Respond.Reply("▶️ Resumed.")
	case errors.Is(err, player.ErrNotPaused):
		return mc.Respond.Reply("The music is not paused.")
	default:
		return mc.Respond.Reply(msgNotConnected)
	}
}

type VolumeCommand struct{ *Deps }

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Adjust the volume" }
func (c *VolumeCommand) Aliases() []string   { return []string{"vol"} }
func (c *VolumeCommand) Usage() string       { return "<0-100>" }

func (c *VolumeCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	if !c.Player.Connected(mc.GuildID) {
		return mc.Respond.Reply(msgNotConnected)
	}
	if len(inv.Args) == 0 {
		return mc.Respond.Reply(fmt.Sprintf("Usage: `%svolume <0-100>`", mc.Prefix))
	}

	percent, err := strconv.Atoi(inv.Args[0])
	if err != nil || percent < 0 || percent > 100 {
		return mc.Respond.Reply("Volume must be between 0 and 100.")
	}

	if err := c.Player.SetVolume(mc.GuildID, float64(percent)/100); err != nil {
		return mc.Respond.Reply(msgNotConnected)
	}
	return mc.Respond.Reply(fmt.Sprintf("🔊 Volume set to %d%%", percent))
}

type DisconnectCommand struct{ *Deps }

func (c *DisconnectCommand) Name() string        { return "dc" }
func (c *DisconnectCommand) Description() string { return "Disconnect the bot from the voice channel" }
func (c *DisconnectCommand) Aliases() []string   { return []string{"disconnect"} }

func (c *DisconnectCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	err := c.Player.Disconnect(ctx, mc.GuildID)
	switch {
	case err == nil:
		return mc.Respond.Reply("👋 Disconnected from voice channel.")
	case errors.Is(err, player.ErrNotConnected):
		return mc.Respond.Reply(msgNotConnected)
	default:
		if rerr := mc.Respond.Reply("Failed to disconnect cleanly, the queue was cleared."); rerr != nil {
			return rerr
		}
		return err
	}
}
