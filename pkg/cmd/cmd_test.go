package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name    string
	aliases []string
	ran     *[]string
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return s.name + " things" }
func (s *stubCommand) Aliases() []string   { return s.aliases }
func (s *stubCommand) Usage() string       { return "<arg>" }

func (s *stubCommand) Run(_ context.Context, _ *Invocation) error {
	*s.ran = append(*s.ran, s.name)
	return nil
}

func tag(label string, ran *[]string) Middleware {
	return func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) error {
			*ran = append(*ran, label)
			return c.Run(ctx, inv)
		})
	}
}

func TestRegistryLooksUpAliases(t *testing.T) {
	t.Parallel()
	var ran []string
	r := NewRegistry()

	play := &stubCommand{name: "play", aliases: []string{"p"}, ran: &ran}
	require.NoError(t, r.Register(play))
	require.NoError(t, r.Register(&stubCommand{name: "queue", aliases: []string{"q", "qu"}, ran: &ran}))

	assert.Same(t, play, r.Get("P"))
	assert.Equal(t, "queue", r.Get("qu").Name())
	assert.Nil(t, r.Get("shuffle"))

	names := []string{}
	for _, c := range r.GetAll() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"play", "queue"}, names)
}

func TestRegistryRejectsClashes(t *testing.T) {
	t.Parallel()
	var ran []string
	r := NewRegistry()

	require.NoError(t, r.Register(&stubCommand{name: "skip", aliases: []string{"s"}, ran: &ran}))
	assert.Error(t, r.Register(&stubCommand{name: "stop", aliases: []string{"s"}, ran: &ran}))
	assert.Nil(t, r.Get("stop"))
	assert.Panics(t, func() { r.MustRegister(&stubCommand{name: "SKIP", ran: &ran}) })
}

func TestApplyOrderAndUnwrap(t *testing.T) {
	t.Parallel()
	var ran []string
	base := &stubCommand{name: "play", aliases: []string{"p"}, ran: &ran}

	c := Apply(base, tag("inner", &ran), tag("outer", &ran))
	require.NoError(t, c.Run(context.Background(), &Invocation{}))

	assert.Equal(t, []string{"outer", "inner", "play"}, ran)
	assert.Same(t, base, Root(c))
	assert.Equal(t, []string{"p"}, Aliases(c))
	assert.Equal(t, "<arg>", Usage(c))
	assert.Equal(t, "play things", c.Description())
}
