// Package command holds the built-in chat commands and the handler
// middleware shared by every front-end.
package command

import (
	"context"
	"strings"
	"time"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/keshon/chatcmd/internal/storage"
	"github.com/keshon/chatcmd/pkg/cmd"
)

// Custom argument types front-ends register resolvers for. TypeUser and
// TypeMember resolve to User, TypeRole to Role, TypeChannel to Channel and
// TypeSnowflake to a string id.
const (
	TypeUser      cmd.ArgType = "user"
	TypeMember    cmd.ArgType = "member"
	TypeRole      cmd.ArgType = "role"
	TypeChannel   cmd.ArgType = "channel"
	TypeSnowflake cmd.ArgType = "snowflake"
)

type User struct {
	ID   string
	Name string
}

type Role struct {
	ID   string
	Name string
}

type Channel struct {
	ID   string
	Name string
}

// Provider is implemented by every command in this package tree.
type Provider interface {
	Definition() cmd.Definition
}

// Deps is what built-in commands need from the running bot.
type Deps struct {
	Dispatcher *cmd.Dispatcher
	Store      storage.Store
	Config     *config.Config
	// Latency reports the platform round-trip; nil means unknown.
	Latency func() time.Duration
	Started time.Time
}

// Builtins returns the built-in commands wired to deps.
func Builtins(deps *Deps) []Provider {
	return []Provider{
		&HelpCommand{Deps: deps},
		&UsageCommand{Deps: deps},
		&PingCommand{Deps: deps},
		&SetAuthCommand{Store: deps.Store},
		&PrefixCommand{Deps: deps},
		&HistoryCommand{Store: deps.Store},
		&ThrowCommand{},
	}
}

// Register registers every provider with d.
func Register(d *cmd.Dispatcher, providers ...Provider) error {
	for _, p := range providers {
		if err := d.RegisterCommand(p.Definition()); err != nil {
			return err
		}
	}
	return nil
}

// activePrefix is the prefix the issuer typed, for usage hints.
func activePrefix(d *cmd.Dispatcher, inv *cmd.Invocation) string {
	if inv != nil && inv.Prefix != "" {
		return inv.Prefix
	}
	if d == nil {
		return ""
	}
	return d.Prefix()
}

// Prefix returns the prefix for guildID: the stored one, else fallback.
func Prefix(ctx context.Context, store storage.Store, guildID, fallback string) string {
	if store == nil {
		return fallback
	}
	p, err := store.Prefix(ctx, guildID)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallback
	}
	return p
}
