package command

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithLogging attaches a per-call logger carrying a correlation id to the
// context and logs how the handler finished. It should be the outermost
// middleware so the others can log through zerolog.Ctx.
func WithLogging(logger zerolog.Logger) cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, call *cmd.Call) (*cmd.Result, error) {
			l := logger.With().
				Str("call_id", uuid.NewString()).
				Str("command", call.Command.Path()).
				Str("user_id", call.UserID).
				Str("guild_id", call.GuildID).
				Logger()
			ctx = l.WithContext(ctx)

			start := time.Now()
			res, err := next(ctx, call)
			elapsed := time.Since(start)

			switch {
			case err != nil:
				l.Error().Err(err).Dur("elapsed", elapsed).Msg("command failed")
			case res != nil && res.Status == cmd.StatusFailed:
				l.Info().Dur("elapsed", elapsed).Str("status", "failed").Msg("command handled")
			default:
				l.Debug().Dur("elapsed", elapsed).Msg("command completed")
			}
			return res, err
		}
	}
}
