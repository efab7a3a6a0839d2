package command

import (
	"context"
	"errors"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// ErrThrown is what the throw command fails with.
var ErrThrown = errors.New("thrown on request")

// ThrowCommand always fails. It lets owners check how failures are
// reported and logged.
type ThrowCommand struct{}

func (c *ThrowCommand) Definition() cmd.Definition {
	return cmd.Definition{
		Name:        "throw",
		Description: "Fail on purpose",
		Category:    config.CategoryMaintenance,
		Constraints: cmd.Constraints{Specific: []string{cmd.GroupBotOwner}},
		Handler: func(context.Context, *cmd.Call) (*cmd.Result, error) {
			return nil, ErrThrown
		},
	}
}
