// Package datastore is a JSON file-backed key/value store. Values live in
// memory and are flushed to disk periodically and on Close, using an atomic
// write followed by a checksum verification. Older snapshots are kept as
// timestamped backups.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("datastore is closed")

// Config holds configuration options for the DataStore.
type Config struct {
	FilePath string
	// AutoSaveInterval of zero disables the background flush.
	AutoSaveInterval time.Duration
	// BackupCount is the number of backup files to keep.
	BackupCount int
	Logger      zerolog.Logger
}

// DefaultConfig returns a default configuration.
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           zerolog.Nop(),
	}
}

type DataStore struct {
	mu     sync.RWMutex
	data   map[string]json.RawMessage
	file   string
	config *Config
	closed bool

	saveMu       sync.Mutex // serializes writers of the file
	lastChecksum string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new DataStore with default configuration.
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig creates a DataStore, loading filePath when it exists and
// creating an empty document otherwise.
func NewWithConfig(config *Config) (*DataStore, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	ds := &DataStore{
		data:   map[string]json.RawMessage{},
		file:   config.FilePath,
		config: config,
	}

	switch _, err := os.Stat(config.FilePath); {
	case errors.Is(err, os.ErrNotExist):
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("create empty JSON file: %w", err)
		}
	case err == nil:
		if err := ds.loadFromFile(); err != nil {
			return nil, fmt.Errorf("load data from file: %w", err)
		}
	default:
		return nil, fmt.Errorf("check file existence: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if config.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}
	return ds, nil
}

// Put stores value under key. The value is encoded immediately, so later
// changes to it are not observed.
func (ds *DataStore) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = raw
	return nil
}

// Get decodes the value under key into dst. It reports false when the key
// does not exist.
func (ds *DataStore) Get(key string, dst any) (bool, error) {
	ds.mu.RLock()
	raw, ok := ds.data[key]
	closed := ds.closed
	ds.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Update decodes key into dst, runs fn and stores dst back, all under the
// write lock. For a new key fn sees dst as passed in. An error from fn
// leaves the stored value untouched.
func (ds *DataStore) Update(key string, dst any, fn func(exists bool) error) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}

	raw, exists := ds.data[key]
	if exists {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
	}
	if err := fn(exists); err != nil {
		return err
	}
	out, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	ds.data[key] = out
	return nil
}

// Keys returns all keys in sorted order.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SaveToFile forces an immediate save to disk.
func (ds *DataStore) SaveToFile() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.saveToFile()
}

// Close stops the background flush and writes a final snapshot.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.saveToFile()
}

func (ds *DataStore) saveToFile() error {
	ds.saveMu.Lock()
	defer ds.saveMu.Unlock()

	ds.mu.RLock()
	data, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	checksum := checksum(data)
	if checksum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			ds.config.Logger.Warn().Err(err).Str("file", ds.file).Msg("backup failed")
		}
	}
	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}
	if err := ds.verifyFile(checksum); err != nil {
		return fmt.Errorf("file verification failed: %w", err)
	}

	ds.lastChecksum = checksum
	return nil
}

func (ds *DataStore) loadFromFile() error {
	data, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var temp map[string]json.RawMessage
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	if temp == nil {
		temp = map[string]json.RawMessage{}
	}

	ds.mu.Lock()
	ds.data = temp
	ds.mu.Unlock()
	return nil
}

// writeFileAtomic writes to a temporary file, syncs it and renames it over
// the target.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmpFile := ds.file + ".tmp"

	f, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile, ds.file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) verifyFile(expected string) error {
	actual, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("read file for verification: %w", err)
	}
	if checksum(actual) != expected {
		return errors.New("file checksum mismatch")
	}
	return nil
}

// createBackup copies the current file to a timestamped backup and prunes
// the oldest ones beyond BackupCount.
func (ds *DataStore) createBackup() error {
	src, err := os.Open(ds.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	backupFile := fmt.Sprintf("%s.backup.%s", ds.file, time.Now().Format("20060102_150405.000000000"))
	dst, err := os.Create(backupFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.cleanupOldBackups()
	return nil
}

func (ds *DataStore) cleanupOldBackups() {
	matches, err := filepath.Glob(ds.file + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}
	// Timestamped names sort chronologically.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-ds.config.BackupCount] {
		if err := os.Remove(path); err != nil {
			ds.config.Logger.Warn().Err(err).Str("file", path).Msg("remove old backup")
		}
	}
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.config.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.saveToFile(); err != nil {
				ds.config.Logger.Error().Err(err).Str("file", ds.file).Msg("auto-save failed")
			}
		}
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
