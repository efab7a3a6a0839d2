package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *cmd.Call) (*cmd.Result, error) { return nil, nil }

func compile(t *testing.T, def cmd.Definition) *cmd.Command {
	t.Helper()
	c, err := cmd.Compile(def)
	require.NoError(t, err)
	return c
}

func TestResult(t *testing.T) {
	m := Result(cmd.Fail("role does not exist"))
	assert.True(t, m.Failed)
	assert.Equal(t, "role does not exist", m.Text())

	m = Result(&cmd.Result{Title: "Pong", Responses: []string{"a", "b"}})
	assert.False(t, m.Failed)
	assert.Equal(t, "Pong\na\nb", m.Text())

	assert.Equal(t, "", Result(cmd.OK()).Text())
	assert.Equal(t, Message{}, Result(nil))
}

func TestError_Kinds(t *testing.T) {
	ban := compile(t, cmd.Definition{
		Name:    "ban",
		Args:    []cmd.Argument{{Name: "member", Type: cmd.TypeString, Required: true}, {Name: "days", Type: cmd.TypeUnsignedInteger}},
		Handler: noop,
	})
	role := compile(t, cmd.Definition{
		Name:        "role",
		Subcommands: []cmd.Definition{{Name: "add", Handler: noop}, {Name: "remove", Handler: noop}},
	})

	cases := []struct {
		name string
		err  error
		c    *cmd.Command
		want []string
	}{
		{"unknown", &cmd.UnknownCommandError{Token: "hlep", Suggestion: "help"}, nil, []string{"`hlep`", "`!help`"}},
		{"unknown subcommand", &cmd.UnknownSubcommandError{Parent: "role", Token: "list"}, role, []string{"`list`", "`add`, `remove`"}},
		{"missing subcommand", &cmd.UnknownSubcommandError{Parent: "role"}, role, []string{"needs a subcommand"}},
		{"disabled", &cmd.CommandDisabledError{Command: "music"}, nil, []string{"`music` is disabled"}},
		{"missing", &cmd.MissingArgumentError{Name: "member"}, ban, []string{"`member` is required", "Usage: `!ban <member> [days]`"}},
		{"type", &cmd.ArgumentTypeError{Name: "days", Expected: cmd.TypeUnsignedInteger, Received: "-1"}, ban, []string{"non-negative whole number", "`-1`"}},
		{"resolution", &cmd.ArgumentResolutionError{Name: "member", Token: "@ghost", Err: cmd.ErrNotFound}, ban, []string{"`@ghost`"}},
		{"cooldown", &cmd.ConstraintViolation{Kind: cmd.ViolationCooldown, Command: "daily", Remaining: 3 * time.Second}, nil, []string{"Try again in 3s"}},
		{"auth", &cmd.ConstraintViolation{Kind: cmd.ViolationAuth, Command: "ban", Required: 2, Actual: 0}, nil, []string{"level 2", "yours is 0"}},
		{"self perms", &cmd.ConstraintViolation{Kind: cmd.ViolationPermission, Command: "ban", Missing: []string{"ban_members"}, Self: true}, nil, []string{"I need", "ban_members"}},
		{"environment", &cmd.ConstraintViolation{Kind: cmd.ViolationEnvironment, Command: "prefix", Environment: cmd.GuildOnly}, nil, []string{"in servers"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Error(tc.err, tc.c, "!")
			assert.True(t, m.Failed)
			for _, w := range tc.want {
				assert.Contains(t, m.Body, w)
			}
		})
	}
}

func TestError_HandlerCauseIsHidden(t *testing.T) {
	m := Error(&cmd.HandlerError{Command: "throw", Cause: errors.New("secret token leaked")}, nil, "!")
	assert.NotContains(t, m.Text(), "secret")
	assert.Contains(t, m.Body, "`throw` failed")
}

func TestHelp(t *testing.T) {
	c := compile(t, cmd.Definition{
		Name:        "setauth",
		Aliases:     []string{"auth"},
		Description: "Set a user's authorization level",
		Args: []cmd.Argument{
			{Name: "user", Required: true, Description: "who to change"},
			{Name: "level", Type: cmd.TypeUnsignedInteger, Required: true},
		},
		Handler: noop,
	})
	m := Help(c, "?")
	assert.Equal(t, "setauth", m.Title)
	assert.Contains(t, m.Body, "Usage: `?setauth <user> <level>`")
	assert.Contains(t, m.Body, "Aliases: auth")
	assert.Contains(t, m.Body, "`user` (text): who to change")
}
