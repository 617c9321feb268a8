package cmd

import "context"

// RunFunc is the body of a command.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Middleware decorates a command, e.g. with logging or guild checks.
type Middleware func(Command) Command

// Apply wraps c in mws. The last middleware runs first.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		if mw != nil {
			c = mw(c)
		}
	}
	return c
}

// Wrap returns c with its Run replaced by run. Name and Description still
// come from c, and Root can recover c.
func Wrap(c Command, run RunFunc) Command {
	return &wrapped{inner: c, run: run}
}

type wrapped struct {
	inner Command
	run   RunFunc
}

func (w *wrapped) Name() string        { return w.inner.Name() }
func (w *wrapped) Description() string { return w.inner.Description() }
func (w *wrapped) Unwrap() Command     { return w.inner }

func (w *wrapped) Run(ctx context.Context, inv *Invocation) error {
	return w.run(ctx, inv)
}

// Root strips every middleware layer from c.
func Root(c Command) Command {
	for {
		u, ok := c.(interface{ Unwrap() Command })
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
