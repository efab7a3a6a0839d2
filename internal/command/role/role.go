// Package role implements the "role add|remove" command tree.
package role

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/keshon/chatcmd/pkg/util"
)

// PermissionManageRoles is needed by both the issuer and the bot.
const PermissionManageRoles = "manage_roles"

// maxMembers caps how many members one call may touch.
const maxMembers = 10

// Service is the platform side of role management.
type Service interface {
	// Member resolves a mention or id to a member of the invocation's guild.
	// It returns cmd.ErrNotFound for unknown members.
	Member(ctx context.Context, inv *cmd.Invocation, token string) (command.User, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
}

type RoleCommand struct {
	Service Service
}

func (c *RoleCommand) Definition() cmd.Definition {
	constraints := cmd.Constraints{
		Environment:       cmd.GuildOnly,
		IssuerPermissions: []string{PermissionManageRoles},
		SelfPermissions:   []string{PermissionManageRoles},
		Cooldown:          3 * time.Second,
	}
	args := []cmd.Argument{
		{Name: "role", Type: command.TypeRole, Required: true, Description: "role mention, id or name"},
		{Name: "members", Required: true, Description: fmt.Sprintf("up to %d member mentions or ids", maxMembers)},
	}
	return cmd.Definition{
		Name:        "role",
		Description: "Give or take a role",
		Category:    config.CategoryModeration,
		Subcommands: []cmd.Definition{
			{
				Name:        "add",
				Aliases:     []string{"give"},
				Description: "Give a role to members",
				Args:        args,
				SingleArg:   true,
				Constraints: constraints,
				Handler:     c.handler(true),
			},
			{
				Name:        "remove",
				Aliases:     []string{"take", "rm"},
				Description: "Take a role from members",
				Args:        args,
				SingleArg:   true,
				Constraints: constraints,
				Handler:     c.handler(false),
			},
		},
	}
}

type memberOutcome struct {
	token string
	user  command.User
	err   error
}

func (c *RoleCommand) handler(add bool) cmd.Handler {
	return func(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
		role, ok := call.Args.Get("role").(command.Role)
		if !ok {
			return nil, fmt.Errorf("role argument has type %T", call.Args.Get("role"))
		}
		tokens := strings.Fields(call.Args.String("members"))
		if len(tokens) > maxMembers {
			return cmd.Fail(fmt.Sprintf("At most %d members at a time.", maxMembers)), nil
		}

		outcomes := make([]memberOutcome, len(tokens))
		indexes := make([]int, len(tokens))
		for i := range indexes {
			indexes[i] = i
		}

		// Per-member failures land in outcomes; the callback never fails.
		err := util.Parallel(ctx, indexes, 3, func(ctx context.Context, i int) error {
			out := memberOutcome{token: tokens[i]}
			out.user, out.err = c.Service.Member(ctx, call.Invocation, tokens[i])
			if out.err == nil {
				if add {
					out.err = c.Service.AddRole(ctx, call.GuildID, out.user.ID, role.ID)
				} else {
					out.err = c.Service.RemoveRole(ctx, call.GuildID, out.user.ID, role.ID)
				}
			}
			outcomes[i] = out
			return nil
		})
		if err != nil {
			return nil, err
		}

		return summarize(role, add, outcomes), nil
	}
}

func summarize(role command.Role, add bool, outcomes []memberOutcome) *cmd.Result {
	verb := "Removed"
	if add {
		verb = "Gave"
	}
	var done, lines []string
	for _, o := range outcomes {
		switch {
		case o.err == nil:
			done = append(done, "**"+o.user.Name+"**")
		case errors.Is(o.err, cmd.ErrNotFound):
			lines = append(lines, fmt.Sprintf("No member matches `%s`.", o.token))
		default:
			lines = append(lines, fmt.Sprintf("Could not update `%s`: %v", o.token, o.err))
		}
	}

	res := &cmd.Result{Status: cmd.StatusOK, Title: "Role " + role.Name}
	if len(done) > 0 {
		preposition := "from"
		if add {
			preposition = "to"
		}
		res.Responses = append(res.Responses, fmt.Sprintf("%s **%s** %s %s.", verb, role.Name, preposition, strings.Join(done, ", ")))
	} else {
		res.Status = cmd.StatusFailed
	}
	res.Responses = append(res.Responses, lines...)
	return res
}
