// Package console is a terminal front-end for the command pipeline. It
// runs the same commands as the Discord bot against a local store, which
// is handy for trying commands and managing settings offline.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/command/role"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/render"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
)

// GuildID is the guild every console line runs in.
const GuildID = "console"

// UserID identifies the console operator.
const UserID = "console"

// Console runs lines through a dispatcher configured like the bot's.
type Console struct {
	cfg        *config.Config
	dispatcher *cmd.Dispatcher
	roles      *MemoryRoles
	out        io.Writer
	logger     zerolog.Logger

	titleColor *color.Color
	errColor   *color.Color
	hintColor  *color.Color
}

// New builds a console writing replies to out. store may be nil.
func New(cfg *config.Config, store storage.Store, logger zerolog.Logger, out io.Writer) (*Console, error) {
	logger = logger.With().Str("component", "console").Logger()

	mws := []cmd.Middleware{command.WithLogging(logger)}
	if store != nil {
		mws = append(mws, command.WithHistory(store, nil))
	}
	// Lines may be typed with or without the prefix; New strips it.
	d := cmd.NewDispatcher(cmd.WithMiddleware(mws...))
	if err := RegisterTypes(d); err != nil {
		return nil, err
	}

	c := &Console{
		cfg:        cfg,
		dispatcher: d,
		roles:      NewMemoryRoles(),
		out:        out,
		logger:     logger,
		titleColor: color.New(color.FgCyan, color.Bold),
		errColor:   color.New(color.FgRed),
		hintColor:  color.New(color.FgHiBlack),
	}

	deps := &command.Deps{Dispatcher: d, Store: store, Config: cfg, Started: time.Now()}
	providers := append(command.Builtins(deps), &role.RoleCommand{Service: c.roles})
	if err := command.Register(d, providers...); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return c, nil
}

// Dispatcher exposes the dispatcher, e.g. for the sweeper job.
func (c *Console) Dispatcher() *cmd.Dispatcher { return c.dispatcher }

// Prefix is the configured command prefix, used in rendered docs.
func (c *Console) Prefix() string { return c.cfg.CommandPrefix }

// Roles exposes the in-memory role assignments.
func (c *Console) Roles() *MemoryRoles { return c.roles }

func (c *Console) invocation() *cmd.Invocation {
	return &cmd.Invocation{
		UserID:            UserID,
		UserName:          "console",
		GuildID:           GuildID,
		ChannelID:         GuildID,
		Surface:           cmd.SurfaceGuild,
		AuthLevel:         c.cfg.ConsoleAuthLevel,
		IssuerPermissions: operatorPermissions,
		SelfPermissions:   operatorPermissions,
		Groups:            []string{cmd.GroupBotOwner, cmd.GroupServerOwner, cmd.GroupServerModerator},
	}
}

// Exec runs one line and returns the rendered reply. The returned error is
// the dispatch error, already rendered into the message.
func (c *Console) Exec(ctx context.Context, line string) (render.Message, error) {
	line = strings.TrimSpace(line)
	if p := c.cfg.CommandPrefix; p != "" {
		line = strings.TrimPrefix(line, p)
	}
	out, err := c.dispatcher.Dispatch(ctx, line, c.invocation())
	if err != nil {
		return render.Error(err, out.Command, ""), err
	}
	return render.Result(out.Result), nil
}

// Print writes msg to the console output.
func (c *Console) Print(msg render.Message) {
	if msg.Title != "" {
		c.titleColor.Fprintln(c.out, msg.Title)
	}
	if msg.Body == "" {
		return
	}
	if msg.Failed {
		c.errColor.Fprintln(c.out, msg.Body)
		return
	}
	fmt.Fprintln(c.out, msg.Body)
}

// Run reads lines until EOF, Ctrl+C, "exit" or ctx cancellation. History
// is kept in historyFile when it is not empty.
func (c *Console) Run(ctx context.Context, historyFile string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(c.complete)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer c.saveHistory(line, historyFile)
	}

	c.hintColor.Fprintln(c.out, `Type "help" for the command list, "exit" to quit.`)
	for ctx.Err() == nil {
		input, err := line.Prompt("chatcmd> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		msg, _ := c.Exec(ctx, input)
		c.Print(msg)
	}
	return nil
}

func (c *Console) saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		c.logger.Warn().Err(err).Msg("failed to create history directory")
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to save history")
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}

// complete suggests top-level command names and aliases.
func (c *Console) complete(input string) []string {
	head := strings.ToLower(strings.TrimLeft(input, " "))
	if strings.ContainsAny(head, " \t") {
		return nil
	}
	var out []string
	for _, cm := range c.dispatcher.Registry().GetAll() {
		for _, name := range append([]string{cm.Name()}, cm.Aliases()...) {
			if strings.HasPrefix(name, head) {
				out = append(out, name)
			}
		}
	}
	return out
}
