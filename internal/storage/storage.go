// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/chatcmd/internal/config"
	"github.com/rs/zerolog"
)

// commandHistoryLimit is how many history records are kept per guild.
const commandHistoryLimit = 20

// DirectGuildID stores settings of invocations that happened outside a guild.
const DirectGuildID = "@direct"

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

// Store persists per-guild settings the command layer needs: authorization
// levels, custom prefixes and the recent command log. Implementations are
// safe for concurrent use.
type Store interface {
	// AuthLevel returns 0 for users without a stored level.
	AuthLevel(ctx context.Context, guildID, userID string) (int, error)
	SetAuthLevel(ctx context.Context, guildID, userID string, level int) error

	// Prefix returns "" when the guild uses the default prefix.
	Prefix(ctx context.Context, guildID string) (string, error)
	// SetPrefix with an empty prefix restores the default.
	SetPrefix(ctx context.Context, guildID, prefix string) error

	AppendCommandToHistory(ctx context.Context, guildID string, rec CommandHistoryRecord) error
	// FetchCommandHistory returns up to the last 20 records, oldest first.
	FetchCommandHistory(ctx context.Context, guildID string) ([]CommandHistoryRecord, error)

	Close() error
}

// Open returns the Store selected by cfg.StorageDriver.
func Open(cfg *config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverJSON:
		return OpenJSON(cfg.StoragePath, logger)
	case config.DriverSQLite:
		return OpenSQLite(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func guildKey(guildID string) string {
	if guildID == "" {
		return DirectGuildID
	}
	return guildID
}

func trimHistory(list []CommandHistoryRecord) []CommandHistoryRecord {
	if len(list) > commandHistoryLimit {
		return list[len(list)-commandHistoryLimit:]
	}
	return list
}
