package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoPrefix is returned by Dispatch when the line does not start with the
// active prefix. It is not a dispatch failure: adapters simply ignore the line.
var ErrNoPrefix = errors.New("cmd: line has no command prefix")

// ErrNotFound is returned by custom type resolvers when the token does not
// name a known object.
var ErrNotFound = errors.New("cmd: not found")

// DispatchError is implemented by every failure Dispatch can produce for a
// line that carried the prefix. Use errors.As with the concrete types below.
type DispatchError interface {
	error
	dispatchError()
}

// UnknownCommandError means no registered command or alias matched.
type UnknownCommandError struct {
	Token      string
	Suggestion string // closest registered name, empty when nothing is close
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q (did you mean %q?)", e.Token, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q", e.Token)
}

// UnknownSubcommandError means a parent matched but the next token named no
// child and the parent has no handler of its own.
type UnknownSubcommandError struct {
	Parent string
	Token  string
}

func (e *UnknownSubcommandError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: missing subcommand", e.Parent)
	}
	return fmt.Sprintf("%s: unknown subcommand %q", e.Parent, e.Token)
}

// CommandDisabledError means the command's Enabled predicate returned false.
type CommandDisabledError struct {
	Command string
}

func (e *CommandDisabledError) Error() string {
	return fmt.Sprintf("command %q is disabled", e.Command)
}

// MissingArgumentError means a required argument received no value.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Name)
}

// ArgumentTypeError means a raw token could not be converted to the
// argument's primitive type.
type ArgumentTypeError struct {
	Name     string
	Expected ArgType
	Received string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("argument %q: expected %s, got %q", e.Name, e.Expected, e.Received)
}

// ArgumentResolutionError means a custom type resolver could not turn the
// token into a value. Err is ErrNotFound or whatever the resolver returned.
type ArgumentResolutionError struct {
	Name  string
	Token string
	Err   error
}

func (e *ArgumentResolutionError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, ErrNotFound) {
		return fmt.Sprintf("argument %q: cannot resolve %q: %v", e.Name, e.Token, e.Err)
	}
	return fmt.Sprintf("argument %q: cannot resolve %q", e.Name, e.Token)
}

func (e *ArgumentResolutionError) Unwrap() error { return e.Err }

// ViolationKind identifies which constraint rejected an invocation.
type ViolationKind int

const (
	ViolationAuth ViolationKind = iota + 1
	ViolationEnvironment
	ViolationPermission
	ViolationSpecificList
	ViolationCooldown
	ViolationGuard
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationAuth:
		return "auth"
	case ViolationEnvironment:
		return "environment"
	case ViolationPermission:
		return "permission"
	case ViolationSpecificList:
		return "specific"
	case ViolationCooldown:
		return "cooldown"
	case ViolationGuard:
		return "guard"
	default:
		return "unknown"
	}
}

// ConstraintViolation is the first failed constraint of a command.
// Only the fields relevant to Kind are set.
type ConstraintViolation struct {
	Kind    ViolationKind
	Command string

	Required int // ViolationAuth
	Actual   int // ViolationAuth

	Environment Environment // ViolationEnvironment

	Missing []string // ViolationPermission
	Self    bool     // ViolationPermission: true when the bot, not the issuer, lacks them

	Remaining time.Duration // ViolationCooldown

	Index int // ViolationGuard
}

func (e *ConstraintViolation) Error() string {
	var detail string
	switch e.Kind {
	case ViolationAuth:
		detail = fmt.Sprintf("requires authorization level %d, have %d", e.Required, e.Actual)
	case ViolationEnvironment:
		detail = fmt.Sprintf("only available %s", e.Environment)
	case ViolationPermission:
		who := "issuer"
		if e.Self {
			who = "bot"
		}
		detail = fmt.Sprintf("%s lacks permissions: %s", who, strings.Join(e.Missing, ", "))
	case ViolationSpecificList:
		detail = "not on the allow-list"
	case ViolationCooldown:
		detail = fmt.Sprintf("on cooldown for %s", e.Remaining)
	case ViolationGuard:
		detail = fmt.Sprintf("rejected by guard #%d", e.Index)
	}
	return fmt.Sprintf("%s: %s constraint: %s", e.Command, e.Kind, detail)
}

// HandlerError wraps an error returned (or a panic raised) by a handler after
// routing, constraints and arguments all succeeded.
type HandlerError struct {
	Command string
	Cause   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: handler failed: %v", e.Command, e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

func (*UnknownCommandError) dispatchError()     {}
func (*UnknownSubcommandError) dispatchError()  {}
func (*CommandDisabledError) dispatchError()    {}
func (*MissingArgumentError) dispatchError()    {}
func (*ArgumentTypeError) dispatchError()       {}
func (*ArgumentResolutionError) dispatchError() {}
func (*ConstraintViolation) dispatchError()     {}
func (*HandlerError) dispatchError()            {}

// IsUsageError reports whether err is a dispatch failure caused by how the
// command was called (routing, constraints or arguments), as opposed to a
// handler failure.
func IsUsageError(err error) bool {
	var de DispatchError
	if !errors.As(err, &de) {
		return false
	}
	var he *HandlerError
	return !errors.As(err, &he)
}

// RegistrationReason classifies a RegistrationError.
type RegistrationReason int

const (
	DuplicateName RegistrationReason = iota + 1
	DuplicateAlias
	DuplicateShortFlag
	InvalidDefinition
	UnknownType
)

func (r RegistrationReason) String() string {
	switch r {
	case DuplicateName:
		return "duplicate name"
	case DuplicateAlias:
		return "duplicate alias"
	case DuplicateShortFlag:
		return "duplicate short flag"
	case InvalidDefinition:
		return "invalid definition"
	case UnknownType:
		return "unknown argument type"
	default:
		return "unknown"
	}
}

// RegistrationError is returned by Compile and Register. It only happens
// during setup, never during dispatch.
type RegistrationError struct {
	Reason  RegistrationReason
	Command string
	Detail  string
}

func (e *RegistrationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("register %q: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("register %q: %s: %s", e.Command, e.Reason, e.Detail)
}
