// Package discord is the Discord front-end: it turns message events into
// dispatcher invocations and replies with rendered outcomes.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/command/role"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/render"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/keshon/chatcmd/pkg/retrylimit"
	"github.com/rs/zerolog"
)

// dispatchTimeout bounds one message from receipt to reply.
const dispatchTimeout = 30 * time.Second

// Bot is a Discord bot
type Bot struct {
	dg          *discordgo.Session
	cfg         *config.Config
	store       storage.Store
	dispatcher  *cmd.Dispatcher
	logger      zerolog.Logger
	limiter     *retrylimit.AdaptiveLimiter
	retry       retrylimit.Config
	invocations *invocationBuilder
	started     time.Time

	mu      sync.RWMutex
	baseCtx context.Context
}

// NewBot creates the session and registers every command. It does not
// connect; call Run.
func NewBot(cfg *config.Config, store storage.Store, logger zerolog.Logger) (*Bot, error) {
	if err := cfg.RequireDiscord(); err != nil {
		return nil, err
	}
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	logger = logger.With().Str("component", "discord").Logger()
	retry := retrylimit.DefaultConfig()
	retry.Logger = logger

	b := &Bot{
		dg:          dg,
		cfg:         cfg,
		store:       store,
		logger:      logger,
		limiter:     retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		retry:       retry,
		invocations: &invocationBuilder{cfg: cfg, store: store, logger: logger},
		started:     time.Now(),
		baseCtx:     context.Background(),
	}

	mws := []cmd.Middleware{command.WithLogging(logger)}
	if store != nil {
		mws = append(mws, command.WithHistory(store, nil))
	}
	b.dispatcher = cmd.NewDispatcher(cmd.WithPrefix(cfg.CommandPrefix), cmd.WithMiddleware(mws...))
	if err := RegisterTypes(b.dispatcher); err != nil {
		return nil, err
	}

	deps := &command.Deps{
		Dispatcher: b.dispatcher,
		Store:      store,
		Config:     cfg,
		Latency:    b.Latency,
		Started:    b.started,
	}
	providers := append(command.Builtins(deps), &role.RoleCommand{Service: &roleService{bot: b}})
	if err := command.Register(b.dispatcher, providers...); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return b, nil
}

// Dispatcher exposes the command dispatcher, e.g. for the sweeper job.
func (b *Bot) Dispatcher() *cmd.Dispatcher { return b.dispatcher }

// Latency is the gateway heartbeat round-trip.
func (b *Bot) Latency() time.Duration { return b.dg.HeartbeatLatency() }

// Run connects and serves until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.baseCtx = ctx
	b.mu.Unlock()

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.logger.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) runContext() context.Context {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.baseCtx
}

// onReady is called when the bot is ready
func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	name := ""
	if r.User != nil {
		name = r.User.Username
	}
	b.logger.Info().
		Str("user", name).
		Int("guilds", len(r.Guilds)).
		Int("commands", len(b.dispatcher.Registry().GetAll())).
		Msg("✅ Discord bot is running")
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	if m.Author.Bot && b.cfg.IgnoreBots {
		return
	}

	ctx, cancel := context.WithTimeout(b.runContext(), dispatchTimeout)
	defer cancel()

	inv := b.invocations.build(ctx, s, m)
	out, err := b.dispatcher.Dispatch(ctx, m.Content, inv)
	if errors.Is(err, cmd.ErrNoPrefix) {
		return
	}

	var msg render.Message
	if err != nil {
		var handlerErr *cmd.HandlerError
		if !errors.As(err, &handlerErr) {
			b.logger.Debug().Err(err).Str("state", out.State.String()).Str("user_id", m.Author.ID).Msg("command rejected")
		}
		msg = render.Error(err, out.Command, inv.Prefix)
	} else {
		msg = render.Result(out.Result)
	}

	if err := b.reply(ctx, s, m.ChannelID, msg); err != nil {
		b.logger.Error().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send reply")
	}
}

// roleService is role.Service on top of the bot session.
type roleService struct {
	bot *Bot
}

func (r *roleService) Member(ctx context.Context, inv *cmd.Invocation, token string) (command.User, error) {
	s, err := sessionOf(inv)
	if err != nil {
		return command.User{}, err
	}
	return findMember(ctx, s, inv.GuildID, token)
}

func (r *roleService) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return retrylimit.Do(ctx, r.bot.limiter, r.bot.retry, func() error {
		return classify(r.bot.dg.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)))
	})
}

func (r *roleService) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return retrylimit.Do(ctx, r.bot.limiter, r.bot.retry, func() error {
		return classify(r.bot.dg.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)))
	})
}
