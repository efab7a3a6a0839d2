// cmd/cli/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/console"
	"github.com/keshon/chatcmd/internal/docs"
	"github.com/keshon/chatcmd/internal/logging"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/jobmgr"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
	noColor  bool
	noStore  bool
)

var rootCmd = &cobra.Command{
	Use:   "chatcmd",
	Short: "Run bot commands from the terminal",
	Long: `chatcmd runs the bot's chat commands against the local store without
connecting to Discord. With no subcommand it starts an interactive prompt.`,
	SilenceUsage: true,
	RunE: func(c *cobra.Command, _ []string) error {
		return withConsole(c.Context(), func(ctx context.Context, con *console.Console) error {
			home, _ := os.UserConfigDir()
			history := ""
			if home != "" {
				history = filepath.Join(home, "chatcmd", "history")
			}
			return con.Run(ctx, history)
		})
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Run a single command line and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return withConsole(c.Context(), func(ctx context.Context, con *console.Console) error {
			msg, err := con.Exec(ctx, strings.Join(args, " "))
			con.Print(msg)
			return err
		})
	},
}

var (
	docsTemplate string
	docsOut      string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Write the markdown command reference",
	RunE: func(c *cobra.Command, _ []string) error {
		noStore = true
		return withConsole(c.Context(), func(_ context.Context, con *console.Console) error {
			if docsOut == "-" {
				return docs.Render(os.Stdout, docs.DefaultTemplate, con.Dispatcher().Registry(), con.Prefix())
			}
			return docs.UpdateReadme(con.Dispatcher().Registry(), con.Prefix(), docsTemplate, docsOut)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "run without persistent storage")
	docsCmd.Flags().StringVar(&docsTemplate, "template", "", "README template with {{ .CommandSections }}")
	docsCmd.Flags().StringVarP(&docsOut, "out", "o", "-", `output file, "-" for stdout`)
	rootCmd.AddCommand(execCmd, docsCmd)
}

func withConsole(ctx context.Context, fn func(context.Context, *console.Console) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Setup(cfg)
	color.NoColor = color.NoColor || noColor

	var store storage.Store
	if !noStore {
		store, err = storage.Open(cfg, logging.Component("storage"))
		if err != nil {
			return err
		}
		defer store.Close()
	}

	con, err := console.New(cfg, store, logging.Logger, os.Stdout)
	if err != nil {
		return err
	}

	jobs := jobmgr.NewManager(logging.Logger)
	defer jobs.Shutdown()
	cooldowns := con.Dispatcher().Evaluator().Cooldowns()
	if err := jobs.StartAsync(ctx, "cooldown-sweeper", func(ctx context.Context) error {
		return command.RunCooldownSweeper(ctx, cooldowns, cfg.CooldownSweepInterval, logging.Component("sweeper"))
	}); err != nil {
		return err
	}

	return fn(ctx, con)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
