// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is parsed and
// dispatched (Discord messages, CLI, HTTP) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries the input any command runner can pass: arguments and an
// opaque payload. Adapters set Data to their own context type.
type Invocation struct {
	Name string
	Args []string
	Data interface{}
}

// Command is the universal contract: identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// AliasProvider is implemented by commands reachable under extra names.
type AliasProvider interface {
	Aliases() []string
}

// UsageProvider is implemented by commands that take arguments.
type UsageProvider interface {
	Usage() string
}

// Aliases returns c's aliases, looking through wrappers.
func Aliases(c Command) []string {
	if ap, ok := Root(c).(AliasProvider); ok {
		return ap.Aliases()
	}
	return nil
}

// Usage returns the argument synopsis for c, or "".
func Usage(c Command) string {
	if up, ok := Root(c).(UsageProvider); ok {
		return up.Usage()
	}
	return ""
}
