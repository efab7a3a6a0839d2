package command

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/pkg/cmd"
)

type PingCommand struct {
	Deps *Deps
}

func (c *PingCommand) Definition() cmd.Definition {
	return cmd.Definition{
		Name:        "ping",
		Description: "Check bot latency",
		Category:    config.CategoryMaintenance,
		Constraints: cmd.Constraints{Cooldown: 5 * time.Second},
		Handler:     c.Run,
	}
}

func (c *PingCommand) Run(context.Context, *cmd.Call) (*cmd.Result, error) {
	msg := "🏓 Pong!"
	if c.Deps.Latency != nil {
		msg = fmt.Sprintf("🏓 Pong! %dms", c.Deps.Latency().Milliseconds())
	}
	res := cmd.OK(msg)
	if !c.Deps.Started.IsZero() {
		res.Responses = append(res.Responses, fmt.Sprintf("Up for %s", time.Since(c.Deps.Started).Round(time.Second)))
	}
	return res, nil
}
