package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/rs/zerolog"
)

// invocationBuilder describes a message author for the dispatcher.
type invocationBuilder struct {
	cfg    *config.Config
	store  storage.Store
	logger zerolog.Logger
}

func (ib *invocationBuilder) build(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) *cmd.Invocation {
	inv := &cmd.Invocation{
		UserID:    m.Author.ID,
		UserName:  m.Author.Username,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Surface:   cmd.SurfaceGuild,
		Data:      &Message{Session: s, Event: m},
	}
	if m.GuildID == "" {
		inv.Surface = cmd.SurfaceDirect
	}
	if ib.cfg.IsDeveloper(m.Author.ID) {
		inv.Groups = append(inv.Groups, cmd.GroupBotOwner)
	}

	if ib.store != nil {
		level, err := ib.store.AuthLevel(ctx, m.GuildID, m.Author.ID)
		if err != nil {
			ib.logger.Warn().Err(err).Str("user_id", m.Author.ID).Msg("failed to read auth level")
		}
		inv.AuthLevel = level
	}

	inv.Prefix = command.Prefix(ctx, ib.store, m.GuildID, ib.cfg.CommandPrefix)
	if s.State.User != nil {
		if mention, ok := stripMentionPrefix(m.Content, s.State.User.ID); ok {
			inv.Prefix = mention
		}
	}

	if inv.Surface == cmd.SurfaceGuild {
		ib.guildFacts(s, m, inv)
	}
	return inv
}

// guildFacts fills permissions and groups from the state cache.
func (ib *invocationBuilder) guildFacts(s *discordgo.Session, m *discordgo.MessageCreate, inv *cmd.Invocation) {
	if perms, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID); err == nil {
		inv.IssuerPermissions = PermissionTokens(perms)
		if isModerator(perms) {
			inv.Groups = append(inv.Groups, cmd.GroupServerModerator)
		}
	} else {
		ib.logger.Debug().Err(err).Str("user_id", m.Author.ID).Msg("issuer permissions unavailable")
	}

	if s.State.User != nil {
		if perms, err := s.State.UserChannelPermissions(s.State.User.ID, m.ChannelID); err == nil {
			inv.SelfPermissions = PermissionTokens(perms)
		}
	}

	if g, err := s.State.Guild(m.GuildID); err == nil && g.OwnerID == m.Author.ID {
		inv.Groups = append(inv.Groups, cmd.GroupServerOwner)
	}

	roles := []string(nil)
	if m.Member != nil {
		roles = m.Member.Roles
	} else if member, err := s.State.Member(m.GuildID, m.Author.ID); err == nil {
		roles = member.Roles
	}
	for _, id := range roles {
		inv.Groups = append(inv.Groups, "role:"+id)
	}
}
