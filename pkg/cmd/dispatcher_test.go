package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	d := NewDispatcher(append([]Option{WithPrefix("!")}, opts...)...)
	require.NoError(t, d.RegisterArgumentType("member", func(_ context.Context, token string, _ *Invocation) (any, error) {
		if len(token) > 1 && token[0] == '@' {
			return token[1:], nil
		}
		return nil, ErrNotFound
	}))
	return d
}

func TestDispatch_SubcommandRouting(t *testing.T) {
	d := newTestDispatcher(t)
	var got *Call
	require.NoError(t, d.RegisterCommand(Definition{
		Name: "role",
		Subcommands: []Definition{{
			Name:    "add",
			Aliases: []string{"give"},
			Args: []Argument{
				{Name: "role", Required: true},
				{Name: "member", Type: "member", Required: true},
			},
			Handler: func(_ context.Context, c *Call) (*Result, error) {
				got = c
				return OK("done"), nil
			},
		}},
	}))

	out, err := d.Dispatch(context.Background(), "!role give moderator @x", &Invocation{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "role add", out.Command.Path())
	assert.Equal(t, []string{"done"}, out.Result.Responses)

	require.NotNil(t, got)
	assert.Equal(t, "give", got.Label)
	assert.Equal(t, "moderator", got.Args.String("role"))
	assert.Equal(t, "x", got.Args.Get("member"))
	assert.Equal(t, "moderator @x", got.Remainder)
	assert.Equal(t, "u1", got.UserID)
}

func TestDispatch_Prefix(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.RegisterCommand(Definition{Name: "ping", Handler: noop}))

	_, err := d.Dispatch(context.Background(), "ping", nil)
	assert.ErrorIs(t, err, ErrNoPrefix)

	_, err = d.Dispatch(context.Background(), "  !ping", nil)
	assert.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "$ping", &Invocation{Prefix: "$"})
	assert.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "!ping", &Invocation{Prefix: "$"})
	assert.ErrorIs(t, err, ErrNoPrefix)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.RegisterCommand(Definition{Name: "help", Handler: noop}))

	out, err := d.Dispatch(context.Background(), "!hlep me", nil)
	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "hlep", unknown.Token)
	assert.Equal(t, "help", unknown.Suggestion)
	assert.Equal(t, StateUnknown, out.State)
	assert.Nil(t, out.Command)

	_, err = d.Dispatch(context.Background(), "!", nil)
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "", unknown.Token)
}

func TestDispatch_UnknownSubcommand(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.RegisterCommand(Definition{
		Name:        "role",
		Subcommands: []Definition{{Name: "add", Handler: noop}},
	}))

	_, err := d.Dispatch(context.Background(), "!role list", nil)
	var unknown *UnknownSubcommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "role", unknown.Parent)
	assert.Equal(t, "list", unknown.Token)
	assert.True(t, IsUsageError(err))

	_, err = d.Dispatch(context.Background(), "!role", nil)
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "", unknown.Token)
}

func TestDispatch_Disabled(t *testing.T) {
	d := newTestDispatcher(t)
	called := false
	require.NoError(t, d.RegisterCommand(Definition{
		Name:    "music",
		Enabled: func(_ context.Context, inv *Invocation) bool { return inv.GuildID != "g-off" },
		Handler: func(context.Context, *Call) (*Result, error) {
			called = true
			return nil, nil
		},
	}))

	out, err := d.Dispatch(context.Background(), "!music", &Invocation{GuildID: "g-off"})
	var disabled *CommandDisabledError
	require.ErrorAs(t, err, &disabled)
	assert.Equal(t, StateDisabled, out.State)
	assert.False(t, called)

	out, err = d.Dispatch(context.Background(), "!music", &Invocation{GuildID: "g-on"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StatusOK, out.Result.Status)
}

func TestDispatch_ConstraintBeforeArguments(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.RegisterCommand(Definition{
		Name:        "ban",
		Args:        []Argument{{Name: "member", Type: "member", Required: true}},
		Constraints: Constraints{AuthLevel: 1},
		Handler:     noop,
	}))

	// Missing argument and insufficient auth: the constraint wins.
	out, err := d.Dispatch(context.Background(), "!ban", &Invocation{})
	var v *ConstraintViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, StateRejected, out.State)

	out, err = d.Dispatch(context.Background(), "!ban nobody", &Invocation{AuthLevel: 1})
	var resErr *ArgumentResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, StateFailed, out.State)
	assert.True(t, IsUsageError(err))
}

func TestDispatch_CooldownThroughDispatcher(t *testing.T) {
	clock := newFakeClock()
	d := newTestDispatcher(t, WithClock(clock.Now))
	require.NoError(t, d.RegisterCommand(Definition{
		Name:        "daily",
		Constraints: Constraints{Cooldown: 5 * time.Second},
		Handler:     noop,
	}))
	u := &Invocation{UserID: "U"}

	clock.Set(0)
	_, err := d.Dispatch(context.Background(), "!daily", u)
	require.NoError(t, err)

	clock.Set(2000)
	_, err = d.Dispatch(context.Background(), "!daily", u)
	var v *ConstraintViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ViolationCooldown, v.Kind)
	assert.Equal(t, 3*time.Second, v.Remaining)

	clock.Set(6000)
	_, err = d.Dispatch(context.Background(), "!daily", u)
	assert.NoError(t, err)
}

func TestDispatch_HandlerFailures(t *testing.T) {
	d := newTestDispatcher(t)
	boom := errors.New("database unavailable")
	require.NoError(t, d.RegisterCommand(Definition{
		Name:    "fail",
		Handler: func(context.Context, *Call) (*Result, error) { return nil, boom },
	}))
	require.NoError(t, d.RegisterCommand(Definition{
		Name:    "explode",
		Handler: func(context.Context, *Call) (*Result, error) { panic("nil map") },
	}))
	require.NoError(t, d.RegisterCommand(Definition{
		Name:    "refuse",
		Handler: func(context.Context, *Call) (*Result, error) { return Fail("role does not exist"), nil },
	}))

	out, err := d.Dispatch(context.Background(), "!fail", nil)
	var hErr *HandlerError
	require.ErrorAs(t, err, &hErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "fail", hErr.Command)
	assert.Equal(t, StateThrew, out.State)
	assert.False(t, IsUsageError(err))

	out, err = d.Dispatch(context.Background(), "!explode", nil)
	require.ErrorAs(t, err, &hErr)
	assert.Contains(t, hErr.Cause.Error(), "nil map")
	assert.Equal(t, StateThrew, out.State)

	// A failed status is a handled outcome, not an error.
	out, err = d.Dispatch(context.Background(), "!refuse", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Result.Status)
}

func TestDispatch_MiddlewareOrder(t *testing.T) {
	var trace []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, c *Call) (*Result, error) {
				trace = append(trace, name+">")
				res, err := next(ctx, c)
				trace = append(trace, "<"+name)
				return res, err
			}
		}
	}
	d := newTestDispatcher(t, WithMiddleware(mark("outer"), mark("inner")))
	require.NoError(t, d.RegisterCommand(Definition{
		Name: "ping",
		Handler: func(context.Context, *Call) (*Result, error) {
			trace = append(trace, "handler")
			return nil, nil
		},
	}))
	require.NoError(t, d.RegisterCommand(Definition{Name: "locked", Constraints: Constraints{AuthLevel: 5}, Handler: noop}))

	_, err := d.Dispatch(context.Background(), "!ping", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "handler", "<inner", "<outer"}, trace)

	// Middleware never sees rejected invocations.
	trace = nil
	_, err = d.Dispatch(context.Background(), "!locked", nil)
	require.Error(t, err)
	assert.Empty(t, trace)
}

func TestDispatch_RemainderKeepsRawText(t *testing.T) {
	d := newTestDispatcher(t)
	var got *Call
	require.NoError(t, d.RegisterCommand(Definition{
		Name: "say",
		Args: []Argument{{Name: "text"}},
		Handler: func(_ context.Context, c *Call) (*Result, error) {
			got = c
			return nil, nil
		},
	}))

	_, err := d.Dispatch(context.Background(), `!say  "hello  there"   you `, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello  there", got.Args.String("text"))
	assert.Equal(t, `"hello  there"   you`, got.Remainder)
}

func TestDispatcher_RegisterUnknownType(t *testing.T) {
	d := NewDispatcher()
	err := d.RegisterCommand(Definition{
		Name:    "kick",
		Args:    []Argument{{Name: "who", Type: "member"}},
		Handler: noop,
	})
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, UnknownType, regErr.Reason)

	_, ok := d.Registry().Get("kick")
	assert.False(t, ok)
	assert.Panics(t, func() {
		d.MustRegister(Definition{Name: "kick", Args: []Argument{{Name: "who", Type: "member"}}, Handler: noop})
	})
}

func TestDispatch_EmptyPrefixAcceptsEverything(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.RegisterCommand(Definition{Name: "ping", Handler: noop}))
	out, err := d.Dispatch(context.Background(), "PING", nil)
	require.NoError(t, err)
	assert.Equal(t, "PING", out.Label)
	assert.True(t, d.UnregisterCommand("ping"))
}

func TestDispatch_StateTypeIsBuiltIn(t *testing.T) {
	d := NewDispatcher()
	var got []bool
	require.NoError(t, d.RegisterCommand(Definition{
		Name: "announce",
		Args: []Argument{{Name: "enabled", Type: TypeState, Required: true}},
		Handler: func(_ context.Context, c *Call) (*Result, error) {
			got = append(got, c.Args.Bool("enabled"))
			return OK("ok"), nil
		},
	}))

	_, err := d.Dispatch(context.Background(), "announce on", nil)
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), "announce Disable", nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, got)

	_, err = d.Dispatch(context.Background(), "announce maybe", nil)
	var argErr *ArgumentResolutionError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "enabled", argErr.Name)
	assert.Len(t, got, 2)
}
