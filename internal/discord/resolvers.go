package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// Message is what the Discord adapter puts in cmd.Invocation.Data.
type Message struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
}

func sessionOf(inv *cmd.Invocation) (*discordgo.Session, error) {
	if inv == nil {
		return nil, errors.New("no invocation")
	}
	m, ok := inv.Data.(*Message)
	if !ok || m.Session == nil {
		return nil, fmt.Errorf("invocation data is %T, not a discord message", inv.Data)
	}
	return m.Session, nil
}

// RegisterTypes registers the Discord argument types with d.
func RegisterTypes(d *cmd.Dispatcher) error {
	types := map[cmd.ArgType]cmd.TypeResolver{
		command.TypeSnowflake: resolveSnowflake,
		command.TypeUser:      resolveUser,
		command.TypeMember:    resolveMember,
		command.TypeRole:      resolveRole,
		command.TypeChannel:   resolveChannel,
	}
	for id, r := range types {
		if err := d.RegisterArgumentType(id, r); err != nil {
			return fmt.Errorf("register %s: %w", id, err)
		}
	}
	return nil
}

// notFound maps a REST 404 to cmd.ErrNotFound.
func notFound(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return cmd.ErrNotFound
	}
	return err
}

func resolveSnowflake(_ context.Context, token string, _ *cmd.Invocation) (any, error) {
	if id, ok := parseMention(token, "@!", "@&", "@", "#"); ok {
		return id, nil
	}
	return nil, cmd.ErrNotFound
}

func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u != nil && u.GlobalName != "" {
		return u.GlobalName
	}
	if u != nil {
		return u.Username
	}
	return ""
}

func resolveUser(ctx context.Context, token string, inv *cmd.Invocation) (any, error) {
	s, err := sessionOf(inv)
	if err != nil {
		return nil, err
	}
	if inv.GuildID != "" {
		if u, err := findMember(ctx, s, inv.GuildID, token); err == nil {
			return u, nil
		} else if !errors.Is(err, cmd.ErrNotFound) {
			return nil, err
		}
	}
	id, ok := parseUserMention(token)
	if !ok {
		return nil, cmd.ErrNotFound
	}
	u, err := s.User(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, notFound(err)
	}
	return command.User{ID: u.ID, Name: displayName(nil, u)}, nil
}

func resolveMember(ctx context.Context, token string, inv *cmd.Invocation) (any, error) {
	s, err := sessionOf(inv)
	if err != nil {
		return nil, err
	}
	if inv.GuildID == "" {
		return nil, cmd.ErrNotFound
	}
	return findMember(ctx, s, inv.GuildID, token)
}

// findMember accepts a mention, an id, or a username/nickname known to the
// state cache.
func findMember(ctx context.Context, s *discordgo.Session, guildID, token string) (command.User, error) {
	if id, ok := parseUserMention(token); ok {
		if m, err := s.State.Member(guildID, id); err == nil {
			return command.User{ID: id, Name: displayName(m, m.User)}, nil
		}
		m, err := s.GuildMember(guildID, id, discordgo.WithContext(ctx))
		if err != nil {
			return command.User{}, notFound(err)
		}
		return command.User{ID: id, Name: displayName(m, m.User)}, nil
	}

	name := strings.TrimPrefix(token, "@")
	g, err := s.State.Guild(guildID)
	if err != nil {
		return command.User{}, cmd.ErrNotFound
	}
	s.State.RLock()
	defer s.State.RUnlock()
	for _, m := range g.Members {
		if m.User == nil {
			continue
		}
		if strings.EqualFold(m.User.Username, name) || strings.EqualFold(m.Nick, name) || strings.EqualFold(m.User.GlobalName, name) {
			return command.User{ID: m.User.ID, Name: displayName(m, m.User)}, nil
		}
	}
	return command.User{}, cmd.ErrNotFound
}

func resolveRole(ctx context.Context, token string, inv *cmd.Invocation) (any, error) {
	s, err := sessionOf(inv)
	if err != nil {
		return nil, err
	}
	if inv.GuildID == "" {
		return nil, cmd.ErrNotFound
	}

	var roles []*discordgo.Role
	if g, err := s.State.Guild(inv.GuildID); err == nil {
		s.State.RLock()
		roles = append(roles, g.Roles...)
		s.State.RUnlock()
	} else {
		roles, err = s.GuildRoles(inv.GuildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, notFound(err)
		}
	}

	id, byID := parseRoleMention(token)
	name := strings.TrimPrefix(token, "@")
	for _, r := range roles {
		if (byID && r.ID == id) || (!byID && strings.EqualFold(r.Name, name)) {
			return command.Role{ID: r.ID, Name: r.Name}, nil
		}
	}
	return nil, cmd.ErrNotFound
}

func resolveChannel(ctx context.Context, token string, inv *cmd.Invocation) (any, error) {
	s, err := sessionOf(inv)
	if err != nil {
		return nil, err
	}

	if id, ok := parseChannelMention(token); ok {
		if c, err := s.State.Channel(id); err == nil {
			return command.Channel{ID: c.ID, Name: c.Name}, nil
		}
		c, err := s.Channel(id, discordgo.WithContext(ctx))
		if err != nil {
			return nil, notFound(err)
		}
		return command.Channel{ID: c.ID, Name: c.Name}, nil
	}

	if inv.GuildID == "" {
		return nil, cmd.ErrNotFound
	}
	g, err := s.State.Guild(inv.GuildID)
	if err != nil {
		return nil, cmd.ErrNotFound
	}
	name := strings.TrimPrefix(token, "#")
	s.State.RLock()
	defer s.State.RUnlock()
	for _, c := range g.Channels {
		if strings.EqualFold(c.Name, name) {
			return command.Channel{ID: c.ID, Name: c.Name}, nil
		}
	}
	return nil, cmd.ErrNotFound
}
