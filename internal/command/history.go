package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/keshon/chatcmd/pkg/util"
	"github.com/rs/zerolog"
)

// HistoryCommand lists the recent commands of the current guild.
type HistoryCommand struct {
	Store storage.Store
}

func (c *HistoryCommand) Definition() cmd.Definition {
	return cmd.Definition{
		Name:        "history",
		Aliases:     []string{"log"},
		Description: "Show recently used commands",
		Category:    config.CategoryModeration,
		Constraints: cmd.Constraints{AuthLevel: 1},
		Enabled: func(context.Context, *cmd.Invocation) bool {
			return c.Store != nil
		},
		Handler: c.Run,
	}
}

func (c *HistoryCommand) Run(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
	records, err := c.Store.FetchCommandHistory(ctx, call.GuildID)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(records) == 0 {
		return cmd.OK("No commands recorded yet."), nil
	}

	var sb strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		who := r.Username
		if who == "" {
			who = r.UserID
		}
		fmt.Fprintf(&sb, "`%s` **%s** used `%s`", util.FormatDateTpl(r.Datetime, "YYYY-MM-DD hh:mm"), who, r.Command)
		if r.Param != "" {
			fmt.Fprintf(&sb, " %s", r.Param)
		}
		sb.WriteString("\n")
	}
	return &cmd.Result{Title: "Command history", Responses: []string{strings.TrimSpace(sb.String())}}, nil
}

// WithHistory records every handled call in store after the handler ran,
// whatever it returned. Storage errors are logged, not returned.
func WithHistory(store storage.Store, now func() time.Time) cmd.Middleware {
	if now == nil {
		now = time.Now
	}
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
			res, err := next(ctx, call)

			rec := storage.CommandHistoryRecord{
				ChannelID: call.ChannelID,
				UserID:    call.UserID,
				Username:  call.UserName,
				Command:   call.Command.Path(),
				Param:     call.Remainder,
				Datetime:  now().UTC(),
			}
			if e := store.AppendCommandToHistory(ctx, call.GuildID, rec); e != nil {
				zerolog.Ctx(ctx).Warn().Err(e).Str("command", rec.Command).Msg("failed to record command history")
			}
			return res, err
		}
	}
}
