// Package cmd provides a transport-agnostic command core: a raw line is
// tokenized, routed through the registry to a command (or subcommand),
// gated by its constraints, bound to its argument schema and handed to its
// handler. How lines arrive and how outcomes are rendered (Discord, console)
// is defined by adapters that build an Invocation and call Dispatch.
package cmd

import "context"

// Surface is where an invocation happened.
type Surface int

const (
	// SurfaceGuild is a shared space (server channel).
	SurfaceGuild Surface = iota
	// SurfaceDirect is a private conversation.
	SurfaceDirect
)

func (s Surface) String() string {
	if s == SurfaceDirect {
		return "direct"
	}
	return "guild"
}

// Well-known group identifiers adapters may put in Invocation.Groups and
// commands may list in Constraints.Specific.
const (
	GroupBotOwner        = "group:bot-owner"
	GroupServerOwner     = "group:server-owner"
	GroupServerModerator = "group:server-moderator"
)

// Invocation carries what the adapter knows about who issued a line and
// where. Data is an opaque handle for custom type resolvers and handlers
// (e.g. the platform session and event).
type Invocation struct {
	UserID    string
	UserName  string
	GuildID   string
	ChannelID string
	Surface   Surface

	AuthLevel         int
	IssuerPermissions []string
	SelfPermissions   []string
	Groups            []string

	// Prefix overrides the dispatcher's default prefix when non-empty.
	Prefix string

	Data any
}

// Call is what a handler receives once dispatch has bound everything.
type Call struct {
	*Invocation

	Command *Command
	// Label is the token the issuer typed for the final command in the chain
	// (the canonical name or one of its aliases).
	Label string
	Args  Args
	// Remainder is the raw text after the command chain.
	Remainder string
}

// Status is the outcome a handler reports for a call it handled.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
)

// Result is what a handler returns. A Failed status is a handled outcome
// (e.g. "role does not exist"), not a HandlerError.
type Result struct {
	Status    Status
	Title     string
	Responses []string
}

// OK builds a successful result.
func OK(responses ...string) *Result {
	return &Result{Status: StatusOK, Responses: responses}
}

// Fail builds a handled failure result.
func Fail(responses ...string) *Result {
	return &Result{Status: StatusFailed, Responses: responses}
}

// Handler runs a command.
type Handler func(ctx context.Context, call *Call) (*Result, error)

// EnabledFunc reports whether a command may run at all for this invocation.
type EnabledFunc func(ctx context.Context, inv *Invocation) bool

// Guard is a custom constraint evaluated after the built-in ones.
type Guard func(ctx context.Context, inv *Invocation, c *Command) bool

// TypeResolver converts a raw token into a domain value for a custom
// argument type. Return ErrNotFound when the token names nothing.
type TypeResolver func(ctx context.Context, token string, inv *Invocation) (any, error)

// DefaultFunc computes an argument default from the invocation.
type DefaultFunc func(ctx context.Context, inv *Invocation) (any, error)
