package console

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/render"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	cfg := &config.Config{CommandPrefix: "!", ConsoleAuthLevel: 100}
	c, err := New(cfg, store, zerolog.Nop(), &out)
	require.NoError(t, err)
	return c, &out
}

func TestExec_WithAndWithoutPrefix(t *testing.T) {
	c, _ := newConsole(t)
	ctx := context.Background()

	for _, line := range []string{"help", "!help", "  !usage ping"} {
		msg, err := c.Exec(ctx, line)
		require.NoError(t, err, line)
		assert.NotEmpty(t, msg.Text(), line)
	}
}

func TestExec_RoleAssignments(t *testing.T) {
	c, _ := newConsole(t)
	ctx := context.Background()

	msg, err := c.Exec(ctx, "role add <@&42> alice @bob")
	require.NoError(t, err)
	assert.False(t, msg.Failed)
	assert.Equal(t, []string{"42"}, c.Roles().Roles(GuildID, "alice"))
	assert.Equal(t, []string{"42"}, c.Roles().Roles(GuildID, "bob"))

	_, err = c.Exec(ctx, "role rm 42 alice")
	require.NoError(t, err)
	assert.Empty(t, c.Roles().Roles(GuildID, "alice"))
}

func TestExec_PrefixAndHistory(t *testing.T) {
	c, _ := newConsole(t)
	ctx := context.Background()

	_, err := c.Exec(ctx, "prefix set ?")
	require.NoError(t, err)

	msg, err := c.Exec(ctx, "history")
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "prefix set")
}

func TestExec_Errors(t *testing.T) {
	c, _ := newConsole(t)
	ctx := context.Background()

	msg, err := c.Exec(ctx, "pnig")
	var unknown *cmd.UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.True(t, msg.Failed)
	assert.Contains(t, msg.Text(), "ping")

	_, err = c.Exec(ctx, "throw")
	var handlerErr *cmd.HandlerError
	assert.ErrorAs(t, err, &handlerErr)
}

func TestPrint(t *testing.T) {
	c, out := newConsole(t)
	c.Print(render.Message{Title: "Title", Body: "body", Failed: true})
	assert.Equal(t, "Title\nbody\n", out.String())

	out.Reset()
	c.Print(render.Message{})
	assert.Empty(t, out.String())
}

func TestComplete(t *testing.T) {
	c, _ := newConsole(t)
	assert.Contains(t, c.complete("he"), "help")
	assert.Contains(t, c.complete("hi"), "history")
	assert.Nil(t, c.complete("help us"))
}

func TestBare(t *testing.T) {
	cases := []struct {
		in string
		id string
		ok bool
	}{
		{"<@!123>", "123", true},
		{"@alice", "alice", true},
		{"alice", "alice", true},
		{"<@>", "", false},
		{"a<b", "", false},
	}
	for _, tc := range cases {
		id, ok := bare(tc.in, "@!", "@")
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.id, id, tc.in)
	}
}
