package role

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/keshon/chatcmd/internal/command"
	"github.com/keshon/chatcmd/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu      sync.Mutex
	members map[string]string // id -> name
	roles   map[string]bool   // userID+"/"+roleID
	failFor string
}

func (f *fakeService) Member(_ context.Context, _ *cmd.Invocation, token string) (command.User, error) {
	id := strings.Trim(token, "<@!>")
	name, ok := f.members[id]
	if !ok {
		return command.User{}, cmd.ErrNotFound
	}
	return command.User{ID: id, Name: name}, nil
}

func (f *fakeService) AddRole(_ context.Context, _, userID, roleID string) error {
	if userID == f.failFor {
		return errors.New("missing access")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID+"/"+roleID] = true
	return nil
}

func (f *fakeService) RemoveRole(_ context.Context, _, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles, userID+"/"+roleID)
	return nil
}

func newDispatcher(t *testing.T, svc *fakeService) *cmd.Dispatcher {
	t.Helper()
	d := cmd.NewDispatcher(cmd.WithPrefix("!"))
	require.NoError(t, d.RegisterArgumentType(command.TypeRole, func(_ context.Context, token string, _ *cmd.Invocation) (any, error) {
		if token == "moderator" {
			return command.Role{ID: "r1", Name: "moderator"}, nil
		}
		return nil, cmd.ErrNotFound
	}))
	require.NoError(t, command.Register(d, &RoleCommand{Service: svc}))
	return d
}

func moderator() *cmd.Invocation {
	return &cmd.Invocation{
		UserID:            "mod",
		GuildID:           "g1",
		IssuerPermissions: []string{PermissionManageRoles},
		SelfPermissions:   []string{PermissionManageRoles},
	}
}

func TestRoleAdd(t *testing.T) {
	svc := &fakeService{members: map[string]string{"1": "alice", "2": "bob"}, roles: map[string]bool{}}
	d := newDispatcher(t, svc)

	out, err := d.Dispatch(context.Background(), "!role add moderator <@1> <@!2> <@3>", moderator())
	require.NoError(t, err)
	assert.Equal(t, "role add", out.Command.Path())
	assert.Equal(t, cmd.StatusOK, out.Result.Status)
	assert.Equal(t, "Gave **moderator** to **alice**, **bob**.", out.Result.Responses[0])
	assert.Equal(t, "No member matches `<@3>`.", out.Result.Responses[1])
	assert.True(t, svc.roles["1/r1"])
	assert.True(t, svc.roles["2/r1"])
}

func TestRoleRemove_Alias(t *testing.T) {
	svc := &fakeService{members: map[string]string{"1": "alice"}, roles: map[string]bool{"1/r1": true}}
	d := newDispatcher(t, svc)

	out, err := d.Dispatch(context.Background(), "!role rm moderator 1", moderator())
	require.NoError(t, err)
	assert.Equal(t, "remove", out.Command.Name())
	assert.False(t, svc.roles["1/r1"])
}

func TestRole_AllFailIsFailedStatus(t *testing.T) {
	svc := &fakeService{members: map[string]string{"1": "alice"}, roles: map[string]bool{}, failFor: "1"}
	d := newDispatcher(t, svc)

	out, err := d.Dispatch(context.Background(), "!role give moderator 1", moderator())
	require.NoError(t, err)
	assert.Equal(t, cmd.StatusFailed, out.Result.Status)
	assert.Contains(t, out.Result.Responses[0], "missing access")
}

func TestRole_Rejections(t *testing.T) {
	svc := &fakeService{members: map[string]string{}, roles: map[string]bool{}}
	d := newDispatcher(t, svc)

	inv := moderator()
	inv.SelfPermissions = nil
	_, err := d.Dispatch(context.Background(), "!role add moderator 1", inv)
	var v *cmd.ConstraintViolation
	require.ErrorAs(t, err, &v)
	assert.True(t, v.Self)

	_, err = d.Dispatch(context.Background(), "!role add admin 1", moderator())
	var resErr *cmd.ArgumentResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "role", resErr.Name)

	_, err = d.Dispatch(context.Background(), "!role list", moderator())
	var unknown *cmd.UnknownSubcommandError
	require.ErrorAs(t, err, &unknown)

	out, err := d.Dispatch(context.Background(), "!role take moderator 1 2 3 4 5 6 7 8 9 10 11", &cmd.Invocation{
		UserID:            "other",
		IssuerPermissions: []string{PermissionManageRoles},
		SelfPermissions:   []string{PermissionManageRoles},
	})
	require.NoError(t, err)
	assert.Equal(t, cmd.StatusFailed, out.Result.Status)
}
