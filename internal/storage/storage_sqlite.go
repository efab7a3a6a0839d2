package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS auth_levels (
	guild_id TEXT NOT NULL,
	user_id  TEXT NOT NULL,
	level    INTEGER NOT NULL,
	PRIMARY KEY (guild_id, user_id)
);
CREATE TABLE IF NOT EXISTS guild_prefixes (
	guild_id TEXT PRIMARY KEY,
	prefix   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS command_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id   TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	username   TEXT NOT NULL,
	command    TEXT NOT NULL,
	param      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS command_history_guild ON command_history (guild_id, id);
`

// SQLiteStore keeps settings in a SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens path, creating the schema when needed. ":memory:" opens
// a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) AuthLevel(ctx context.Context, guildID, userID string) (int, error) {
	var level int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT level FROM auth_levels WHERE guild_id = ? AND user_id = ?`,
		guildKey(guildID), userID,
	).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get auth level: %w", err)
	}
	return level, nil
}

func (s *SQLiteStore) SetAuthLevel(ctx context.Context, guildID, userID string, level int) error {
	var err error
	if level == 0 {
		_, err = s.sqlDB.ExecContext(ctx,
			`DELETE FROM auth_levels WHERE guild_id = ? AND user_id = ?`,
			guildKey(guildID), userID,
		)
	} else {
		_, err = s.sqlDB.ExecContext(ctx,
			`INSERT INTO auth_levels (guild_id, user_id, level) VALUES (?, ?, ?)
			 ON CONFLICT (guild_id, user_id) DO UPDATE SET level = excluded.level`,
			guildKey(guildID), userID, level,
		)
	}
	if err != nil {
		return fmt.Errorf("set auth level: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Prefix(ctx context.Context, guildID string) (string, error) {
	var prefix string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT prefix FROM guild_prefixes WHERE guild_id = ?`, guildKey(guildID),
	).Scan(&prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get prefix: %w", err)
	}
	return prefix, nil
}

func (s *SQLiteStore) SetPrefix(ctx context.Context, guildID, prefix string) error {
	var err error
	if prefix == "" {
		_, err = s.sqlDB.ExecContext(ctx, `DELETE FROM guild_prefixes WHERE guild_id = ?`, guildKey(guildID))
	} else {
		_, err = s.sqlDB.ExecContext(ctx,
			`INSERT INTO guild_prefixes (guild_id, prefix) VALUES (?, ?)
			 ON CONFLICT (guild_id) DO UPDATE SET prefix = excluded.prefix`,
			guildKey(guildID), prefix,
		)
	}
	if err != nil {
		return fmt.Errorf("set prefix: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendCommandToHistory(ctx context.Context, guildID string, rec CommandHistoryRecord) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	key := guildKey(guildID)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO command_history (guild_id, channel_id, user_id, username, command, param, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, rec.ChannelID, rec.UserID, rec.Username, rec.Command, rec.Param, rec.Datetime.UnixMilli(),
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM command_history WHERE guild_id = ? AND id NOT IN (
			SELECT id FROM command_history WHERE guild_id = ? ORDER BY id DESC LIMIT ?
		 )`,
		key, key, commandHistoryLimit,
	); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) FetchCommandHistory(ctx context.Context, guildID string) ([]CommandHistoryRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT channel_id, user_id, username, command, param, created_at
		 FROM command_history WHERE guild_id = ? ORDER BY id DESC LIMIT ?`,
		guildKey(guildID), commandHistoryLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer rows.Close()

	var out []CommandHistoryRecord
	for rows.Next() {
		var rec CommandHistoryRecord
		var created int64
		if err := rows.Scan(&rec.ChannelID, &rec.UserID, &rec.Username, &rec.Command, &rec.Param, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Datetime = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
