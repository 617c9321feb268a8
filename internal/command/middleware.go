package command

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/fzmusic/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithGuildOnly drops commands sent outside a guild, such as direct messages.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc, ok := Message(inv)
			if !ok || mc.GuildID == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger logs every command run along with its outcome.
func WithCommandLogger(logger zerolog.Logger) cmd.Middleware {
	log := logger.With().Str("component", "command").Logger()
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			ev := log.Info()
			if err != nil {
				ev = log.Error().Err(err)
			}
			if mc, ok := Message(inv); ok {
				ev = ev.Str("guild", mc.GuildID).Str("channel", mc.ChannelID).
					Str("user_id", mc.Author.ID).Str("user", mc.Author.Name)
			}
			ev.Str("command", c.Name()).Strs("args", inv.Args).Dur("took", time.Since(start)).Msg("Command executed")
			return err
		})
	}
}

// WithRecover turns a panicking command into an error.
func WithRecover() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("command %s panicked: %v", c.Name(), rec)
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}

// Defaults is the middleware chain every message command runs with.
func Defaults(logger zerolog.Logger) []cmd.Middleware {
	return []cmd.Middleware{
		WithRecover(),
		WithGuildOnly(),
		WithCommandLogger(logger),
	}
}
