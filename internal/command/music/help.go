package music

import (
	"context"

	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/embed"
	"github.com/keshon/fzmusic/pkg/cmd"
)

type HelpCommand struct{ *Deps }

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Show this list of commands" }

func (c *HelpCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.Message(inv)
	if !ok {
		return nil
	}

	var entries []embed.HelpEntry
	for _, cm := range c.Registry.GetAll() {
		entries = append(entries, embed.HelpEntry{
			Name:        cm.Name(),
			Aliases:     cmd.Aliases(cm),
			Usage:       cmd.Usage(cm),
			Description: cm.Description(),
		})
	}
	return mc.Respond.ReplyEmbed(embed.Help(mc.Prefix, entries))
}
