package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *Call) (*Result, error) { return OK(), nil }

func mustCompile(t *testing.T, def Definition) *Command {
	t.Helper()
	c, err := Compile(def)
	require.NoError(t, err)
	return c
}

func roleDefinition() Definition {
	return Definition{
		Name: "role",
		Subcommands: []Definition{
			{
				Name:    "add",
				Aliases: []string{"give"},
				Args: []Argument{
					{Name: "role", Required: true},
					{Name: "member", Required: true},
				},
				Handler: noop,
			},
			{Name: "remove", Aliases: []string{"rm"}, Handler: noop},
		},
	}
}

func TestRegistry_AliasEquivalence(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustCompile(t, Definition{Name: "ping", Aliases: []string{"p"}, Handler: noop})))

	byAlias, ok := r.Get("p")
	require.True(t, ok)
	byName, ok := r.Get("ping")
	require.True(t, ok)
	assert.Same(t, byName, byAlias)

	upper, ok := r.Get("PING")
	require.True(t, ok)
	assert.Same(t, byName, upper)
}

func TestRegistry_Collisions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustCompile(t, Definition{Name: "ping", Aliases: []string{"p"}, Handler: noop})))
	require.NoError(t, r.Register(mustCompile(t, roleDefinition())))

	cases := []struct {
		def    Definition
		reason RegistrationReason
	}{
		{Definition{Name: "Ping", Handler: noop}, DuplicateName},
		{Definition{Name: "pong", Aliases: []string{"P"}, Handler: noop}, DuplicateAlias},
		{Definition{Name: "p", Handler: noop}, DuplicateName},
		{Definition{Name: "add", Handler: noop}, DuplicateName},
		{Definition{Name: "channel", Subcommands: []Definition{{Name: "rm", Handler: noop}}}, DuplicateName},
		{Definition{Name: "channel", Aliases: []string{"give"}, Handler: noop}, DuplicateAlias},
	}
	for _, tc := range cases {
		err := r.Register(mustCompile(t, tc.def))
		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr, tc.def.Name)
		assert.Equal(t, tc.reason, regErr.Reason, tc.def.Name)
	}

	// Failed registrations leave nothing behind.
	_, ok := r.Get("pong")
	assert.False(t, ok)
	_, ok = r.Get("channel")
	assert.False(t, ok)
	assert.Len(t, r.GetAll(), 2)
}

func TestRegistry_CollisionAcrossLevels(t *testing.T) {
	r := NewRegistry()
	err := r.Register(mustCompile(t, Definition{
		Name:        "config",
		Subcommands: []Definition{{Name: "config", Handler: noop}},
	}))
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Empty(t, r.GetAll())
}

func TestRegistry_ResolveChain(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustCompile(t, roleDefinition())))

	c, n := r.ResolveChain([]string{"role", "add", "moderator", "@x"})
	require.NotNil(t, c)
	assert.Equal(t, 2, n)
	assert.Equal(t, "role add", c.Path())
	assert.Equal(t, KindSubcommand, c.Kind())

	c, n = r.ResolveChain([]string{"ROLE", "give"})
	require.NotNil(t, c)
	assert.Equal(t, 2, n)
	assert.Equal(t, "add", c.Name())

	c, n = r.ResolveChain([]string{"role", "list"})
	require.NotNil(t, c)
	assert.Equal(t, 1, n)
	assert.Equal(t, KindCommand, c.Kind())
	assert.False(t, c.Runnable())

	c, n = r.ResolveChain([]string{"nope"})
	assert.Nil(t, c)
	assert.Zero(t, n)
}

func TestRegistry_Find(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustCompile(t, roleDefinition())))

	c, ok := r.Find("role rm")
	require.True(t, ok)
	assert.Equal(t, "role remove", c.Path())

	_, ok = r.Find("role rm extra")
	assert.False(t, ok)
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustCompile(t, roleDefinition())))

	assert.False(t, r.Unregister("nothing"))
	assert.True(t, r.Unregister("ROLE"))
	_, ok := r.Get("role")
	assert.False(t, ok)

	// Subcommand names are free again.
	require.NoError(t, r.Register(mustCompile(t, Definition{Name: "add", Handler: noop})))
}

func TestRegistry_Suggest(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mustCompile(t, Definition{Name: "help", Handler: noop})))
	require.NoError(t, r.Register(mustCompile(t, Definition{Name: "history", Handler: noop})))

	assert.Equal(t, "help", r.Suggest("hlep"))
	assert.Equal(t, "history", r.Suggest("histroy"))
	assert.Equal(t, "", r.Suggest("zzzzzz"))
	assert.Equal(t, "", r.Suggest(""))
}

func TestCompile_Validation(t *testing.T) {
	cases := []struct {
		name   string
		def    Definition
		reason RegistrationReason
	}{
		{"empty name", Definition{Handler: noop}, InvalidDefinition},
		{"spaced name", Definition{Name: "a b", Handler: noop}, InvalidDefinition},
		{"no handler", Definition{Name: "a"}, InvalidDefinition},
		{"alias repeats name", Definition{Name: "a", Aliases: []string{"A"}, Handler: noop}, DuplicateAlias},
		{"duplicate short", Definition{Name: "a", Handler: noop, Args: []Argument{
			{Name: "x", Short: "v"}, {Name: "y", Short: "v"},
		}}, DuplicateShortFlag},
		{"long short", Definition{Name: "a", Handler: noop, Args: []Argument{{Name: "x", Short: "vv"}}}, InvalidDefinition},
		{"duplicate arg", Definition{Name: "a", Handler: noop, Args: []Argument{{Name: "x"}, {Name: "x"}}}, InvalidDefinition},
		{"single arg not string", Definition{Name: "a", Handler: noop, SingleArg: true, Args: []Argument{{Name: "n", Type: TypeInteger}}}, InvalidDefinition},
		{"sibling clash", Definition{Name: "a", Subcommands: []Definition{
			{Name: "b", Handler: noop}, {Name: "c", Aliases: []string{"b"}, Handler: noop},
		}}, DuplicateAlias},
		{"negative cooldown", Definition{Name: "a", Handler: noop, Constraints: Constraints{Cooldown: -1}}, InvalidDefinition},
	}
	for _, tc := range cases {
		_, err := Compile(tc.def)
		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr, tc.name)
		assert.Equal(t, tc.reason, regErr.Reason, tc.name)
	}
}

func TestCommand_Usage(t *testing.T) {
	c := mustCompile(t, Definition{
		Name: "ban",
		Args: []Argument{
			{Name: "user", Required: true},
			{Name: "silent", Type: TypeBoolean, Short: "s"},
			{Name: "reason"},
		},
		SingleArg: true,
		Handler:   noop,
	})
	assert.Equal(t, "ban <user> [-s|--silent] [reason]...", c.Usage())
	assert.Equal(t, TypeString, c.Args()[0].Type)
}
