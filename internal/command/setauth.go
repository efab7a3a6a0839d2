package command

import (
	"context"
	"fmt"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// SetAuthCommand stores a user's authorization level for the current guild.
type SetAuthCommand struct {
	Store storage.Store
}

func (c *SetAuthCommand) Definition() cmd.Definition {
	return cmd.Definition{
		Name:        "setauth",
		Aliases:     []string{"auth"},
		Description: "Set a user's authorization level (0 clears it)",
		Category:    config.CategorySettings,
		Args: []cmd.Argument{
			{Name: "user", Type: TypeUser, Required: true, Description: "user to change"},
			{Name: "level", Type: cmd.TypeUnsignedInteger, Required: true, Description: "new level"},
		},
		Constraints: cmd.Constraints{
			Specific: []string{cmd.GroupBotOwner, cmd.GroupServerOwner},
		},
		Enabled: func(context.Context, *cmd.Invocation) bool { return c.Store != nil },
		Handler: c.Run,
	}
}

func (c *SetAuthCommand) Run(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
	user, ok := call.Args.Get("user").(User)
	if !ok {
		return nil, fmt.Errorf("user argument has type %T", call.Args.Get("user"))
	}
	level := int(call.Args.Int("level"))

	if err := c.Store.SetAuthLevel(ctx, call.GuildID, user.ID, level); err != nil {
		return nil, fmt.Errorf("set auth level: %w", err)
	}

	name := user.Name
	if name == "" {
		name = user.ID
	}
	if level == 0 {
		return cmd.OK(fmt.Sprintf("Cleared the authorization level of **%s**.", name)), nil
	}
	return cmd.OK(fmt.Sprintf("Authorization level of **%s** is now %d.", name, level)), nil
}
