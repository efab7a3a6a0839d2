// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/discord"
	"github.com/keshon/chatcmd/internal/logging"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/jobmgr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg)
	logging.Info().Msg("Starting chatcmd bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(cfg, logging.Component("storage"))
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	bot, err := discord.NewBot(cfg, store, logging.Logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create bot")
	}

	jobs := jobmgr.NewManager(logging.Logger)
	defer jobs.Shutdown()
	cooldowns := bot.Dispatcher().Evaluator().Cooldowns()
	if err := jobs.StartAsync(ctx, "cooldown-sweeper", func(ctx context.Context) error {
		return command.RunCooldownSweeper(ctx, cooldowns, cfg.CooldownSweepInterval, logging.Component("sweeper"))
	}); err != nil {
		logging.Fatal().Err(err).Msg("failed to start cooldown sweeper")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logging.Info().Str("signal", s.String()).Msg("Received signal, shutting down...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("Discord bot error")
		}
		cancel()
	}

	logging.Info().Msg("Discord bot exited cleanly")
}
