package storage

import (
	"context"

	"github.com/keshon/chatcmd/datastore"
	"github.com/rs/zerolog"
)

// Record is everything stored for one guild in the JSON backend.
type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	AuthLevels          map[string]int         `json:"auth_levels"`
	Prefix              string                 `json:"prefix,omitempty"`
}

// JSONStore keeps one Record per guild in a datastore file.
type JSONStore struct {
	ds *datastore.DataStore
}

func OpenJSON(filePath string, logger zerolog.Logger) (*JSONStore, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = logger.With().Str("component", "datastore").Logger()
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &JSONStore{ds: ds}, nil
}

func (s *JSONStore) Close() error {
	return s.ds.Close()
}

func (s *JSONStore) getGuildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildKey(guildID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *JSONStore) updateGuildRecord(guildID string, fn func(*Record)) error {
	var record Record
	return s.ds.Update(guildKey(guildID), &record, func(bool) error {
		if record.AuthLevels == nil {
			record.AuthLevels = map[string]int{}
		}
		fn(&record)
		record.CommandsHistoryList = trimHistory(record.CommandsHistoryList)
		return nil
	})
}

func (s *JSONStore) AuthLevel(_ context.Context, guildID, userID string) (int, error) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return 0, err
	}
	return record.AuthLevels[userID], nil
}

func (s *JSONStore) SetAuthLevel(_ context.Context, guildID, userID string, level int) error {
	return s.updateGuildRecord(guildID, func(r *Record) {
		if level == 0 {
			delete(r.AuthLevels, userID)
			return
		}
		r.AuthLevels[userID] = level
	})
}

func (s *JSONStore) Prefix(_ context.Context, guildID string) (string, error) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.Prefix, nil
}

func (s *JSONStore) SetPrefix(_ context.Context, guildID, prefix string) error {
	return s.updateGuildRecord(guildID, func(r *Record) { r.Prefix = prefix })
}

// AppendCommandToHistory appends a command history record for a guild.
func (s *JSONStore) AppendCommandToHistory(_ context.Context, guildID string, rec CommandHistoryRecord) error {
	return s.updateGuildRecord(guildID, func(r *Record) {
		r.CommandsHistoryList = append(r.CommandsHistoryList, rec)
	})
}

func (s *JSONStore) FetchCommandHistory(_ context.Context, guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return trimHistory(record.CommandsHistoryList), nil
}
