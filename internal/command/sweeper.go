package command

import (
	"context"
	"time"

	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/rs/zerolog"
)

// RunCooldownSweeper drops expired cooldown records every interval until
// ctx is done. Run it as a background job.
func RunCooldownSweeper(ctx context.Context, table *cmd.CooldownTable, interval time.Duration, logger zerolog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := table.Sweep(now); n > 0 {
				logger.Debug().Int("removed", n).Int("left", table.Len()).Msg("swept cooldowns")
			}
		}
	}
}
