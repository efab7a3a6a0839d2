package console

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/internal/command/role"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// operatorPermissions is what the console operator (and the "bot") holds.
var operatorPermissions = []string{
	"administrator",
	"ban_members",
	"kick_members",
	command.PermissionManageServer,
	"manage_messages",
	role.PermissionManageRoles,
	"send_messages",
}

// bare strips mention decoration. There is no directory behind the
// console, so any bare word names itself.
func bare(token string, sigils ...string) (string, bool) {
	t := token
	if strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">") {
		t = t[1 : len(t)-1]
	}
	for _, s := range sigils {
		if rest, ok := strings.CutPrefix(t, s); ok {
			t = rest
			break
		}
	}
	if t == "" || strings.ContainsAny(t, "<>@#& \t") {
		return "", false
	}
	return t, true
}

// RegisterTypes registers console resolvers for the platform argument types.
func RegisterTypes(d *cmd.Dispatcher) error {
	user := func(_ context.Context, token string, _ *cmd.Invocation) (any, error) {
		id, ok := bare(token, "@!", "@")
		if !ok {
			return nil, cmd.ErrNotFound
		}
		return command.User{ID: id, Name: id}, nil
	}
	types := map[cmd.ArgType]cmd.TypeResolver{
		command.TypeUser:   user,
		command.TypeMember: user,
		command.TypeRole: func(_ context.Context, token string, _ *cmd.Invocation) (any, error) {
			id, ok := bare(token, "@&", "@")
			if !ok {
				return nil, cmd.ErrNotFound
			}
			return command.Role{ID: id, Name: id}, nil
		},
		command.TypeChannel: func(_ context.Context, token string, _ *cmd.Invocation) (any, error) {
			id, ok := bare(token, "#")
			if !ok {
				return nil, cmd.ErrNotFound
			}
			return command.Channel{ID: id, Name: id}, nil
		},
		command.TypeSnowflake: func(_ context.Context, token string, _ *cmd.Invocation) (any, error) {
			id, ok := bare(token, "@!", "@&", "@", "#")
			if !ok || strings.Trim(id, "0123456789") != "" {
				return nil, cmd.ErrNotFound
			}
			return id, nil
		},
	}
	for id, r := range types {
		if err := d.RegisterArgumentType(id, r); err != nil {
			return fmt.Errorf("register %s: %w", id, err)
		}
	}
	return nil
}

// MemoryRoles is a role.Service that keeps assignments in memory.
type MemoryRoles struct {
	mu    sync.Mutex
	roles map[string][]string // guild/user -> role ids
}

func NewMemoryRoles() *MemoryRoles {
	return &MemoryRoles{roles: make(map[string][]string)}
}

func (m *MemoryRoles) Member(_ context.Context, _ *cmd.Invocation, token string) (command.User, error) {
	id, ok := bare(token, "@!", "@")
	if !ok {
		return command.User{}, cmd.ErrNotFound
	}
	return command.User{ID: id, Name: id}, nil
}

func (m *MemoryRoles) AddRole(_ context.Context, guildID, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := guildID + "/" + userID
	if !slices.Contains(m.roles[key], roleID) {
		m.roles[key] = append(m.roles[key], roleID)
	}
	return nil
}

func (m *MemoryRoles) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := guildID + "/" + userID
	m.roles[key] = slices.DeleteFunc(m.roles[key], func(id string) bool { return id == roleID })
	if len(m.roles[key]) == 0 {
		delete(m.roles, key)
	}
	return nil
}

// Roles returns the role ids userID holds in guildID.
func (m *MemoryRoles) Roles(guildID, userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roles[guildID+"/"+userID])
}
