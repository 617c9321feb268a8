package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/fzmusic/internal/command"
	"github.com/keshon/fzmusic/internal/music/queue"
	"github.com/keshon/fzmusic/pkg/cmd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct {
	got *cmd.Invocation
	err error
}

func (c *echoCommand) Name() string        { return "echo" }
func (c *echoCommand) Description() string { return "test" }
func (c *echoCommand) Aliases() []string   { return []string{"e"} }

func (c *echoCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	c.got = inv
	return c.err
}

func newTestRouter(t *testing.T, c *echoCommand) *Router {
	t.Helper()
	reg := cmd.NewRegistry()
	require.NoError(t, reg.Register(c))
	return NewRouter("fz!", reg, zerolog.Nop())
}

func TestDispatch(t *testing.T) {
	c := &echoCommand{}
	r := newTestRouter(t, c)
	send := &fakeSender{}
	resp := channelResponder{send: send, channelID: "text"}
	alice := queue.Requester{ID: "1", Name: "alice"}

	require.True(t, r.Dispatch(context.Background(), "g1", "text", alice, "  fz!E  one two ", resp))
	require.NotNil(t, c.got)
	assert.Equal(t, "e", c.got.Name)
	assert.Equal(t, []string{"one", "two"}, c.got.Args)

	mc, ok := command.Message(c.got)
	require.True(t, ok)
	assert.Equal(t, "g1", mc.GuildID)
	assert.Equal(t, "text", mc.ChannelID)
	assert.Equal(t, "fz!", mc.Prefix)
	assert.Equal(t, alice, mc.Author)
	assert.Empty(t, send.sent)
}

func TestDispatchIgnores(t *testing.T) {
	r := newTestRouter(t, &echoCommand{})
	resp := channelResponder{send: &fakeSender{}, channelID: "text"}

	for _, content := range []string{"hello", "fz!", "fz!   ", "fz!unknown arg", "!echo"} {
		assert.False(t, r.Dispatch(context.Background(), "g1", "text", queue.Requester{}, content, resp), content)
	}
}

func TestDispatchReportsErrors(t *testing.T) {
	r := newTestRouter(t, &echoCommand{err: errors.New("kaput")})
	send := &fakeSender{}

	require.True(t, r.Dispatch(context.Background(), "g1", "text", queue.Requester{}, "fz!echo", channelResponder{send: send, channelID: "text"}))
	require.Len(t, send.sent, 1)
	assert.Equal(t, "text", send.sent[0].channelID)
	assert.Contains(t, send.sent[0].embed.Description, "kaput")
}

func TestRequesterOf(t *testing.T) {
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{ID: "42", Username: "alice", GlobalName: "Alice"},
		Member: &discordgo.Member{Nick: "Al"},
	}}
	r := requesterOf(m)
	assert.Equal(t, "42", r.ID)
	assert.Equal(t, "Al", r.Name)
	assert.Equal(t, "<@42>", r.Mention)

	m.Member = nil
	assert.Equal(t, "Alice", requesterOf(m).Name)
}
