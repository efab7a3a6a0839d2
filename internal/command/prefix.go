package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// PermissionManageServer is the permission token needed to change the prefix.
const PermissionManageServer = "manage_server"

const maxPrefixLen = 5

// PrefixCommand shows the guild prefix; its subcommands change it.
type PrefixCommand struct {
	Deps *Deps
}

func (c *PrefixCommand) Definition() cmd.Definition {
	hasStore := func(context.Context, *cmd.Invocation) bool { return c.Deps.Store != nil }
	manage := cmd.Constraints{
		Environment:       cmd.GuildOnly,
		IssuerPermissions: []string{PermissionManageServer},
	}
	return cmd.Definition{
		Name:        "prefix",
		Description: "Show or change the command prefix of this server",
		Category:    config.CategorySettings,
		Constraints: cmd.Constraints{Environment: cmd.GuildOnly},
		Handler:     c.show,
		Subcommands: []cmd.Definition{
			{
				Name:        "set",
				Description: "Use a new prefix",
				Args: []cmd.Argument{
					{Name: "value", Required: true, Description: fmt.Sprintf("up to %d characters, no spaces", maxPrefixLen)},
				},
				Constraints: manage,
				Enabled:     hasStore,
				Handler:     c.set,
			},
			{
				Name:        "reset",
				Description: "Go back to the default prefix",
				Constraints: manage,
				Enabled:     hasStore,
				Handler:     c.reset,
			},
		},
	}
}

func (c *PrefixCommand) defaultPrefix() string {
	if c.Deps.Config != nil {
		return c.Deps.Config.CommandPrefix
	}
	return c.Deps.Dispatcher.Prefix()
}

func (c *PrefixCommand) show(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
	p := Prefix(ctx, c.Deps.Store, call.GuildID, c.defaultPrefix())
	return cmd.OK(fmt.Sprintf("The prefix here is `%s`.", p)), nil
}

func (c *PrefixCommand) set(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
	value := call.Args.String("value")
	if len([]rune(value)) > maxPrefixLen || strings.ContainsAny(value, " \t\n`") {
		return cmd.Fail(fmt.Sprintf("A prefix is at most %d characters without spaces or backticks.", maxPrefixLen)), nil
	}
	if err := c.Deps.Store.SetPrefix(ctx, call.GuildID, value); err != nil {
		return nil, fmt.Errorf("set prefix: %w", err)
	}
	return cmd.OK(fmt.Sprintf("Prefix set to `%s`.", value)), nil
}

func (c *PrefixCommand) reset(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
	if err := c.Deps.Store.SetPrefix(ctx, call.GuildID, ""); err != nil {
		return nil, fmt.Errorf("reset prefix: %w", err)
	}
	return cmd.OK(fmt.Sprintf("Prefix reset to `%s`.", c.defaultPrefix())), nil
}
