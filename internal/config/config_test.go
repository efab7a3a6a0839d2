package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, DriverJSON, cfg.StorageDriver)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, time.Minute, cfg.CooldownSweepInterval)
	assert.True(t, cfg.IgnoreBots)
	assert.Equal(t, 100, cfg.ConsoleAuthLevel)
	assert.Error(t, cfg.RequireDiscord())
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("DEVELOPER_ID", "42")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("COOLDOWN_SWEEP_INTERVAL", "30s")
	t.Setenv("IGNORE_BOTS", "false")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.CommandPrefix)
	assert.Equal(t, "datastore.db", cfg.StoragePath)
	assert.Equal(t, 30*time.Second, cfg.CooldownSweepInterval)
	assert.False(t, cfg.IgnoreBots)
	assert.NoError(t, cfg.RequireDiscord())
	assert.True(t, cfg.IsDeveloper("42"))
	assert.False(t, cfg.IsDeveloper("43"))
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err := Parse()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestIsDeveloper_Unset(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.IsDeveloper(""))
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONSOLE_AUTH_LEVEL=7\n"), 0o644))
	// Registers a cleanup that restores the variable after godotenv sets it.
	t.Setenv("CONSOLE_AUTH_LEVEL", "")
	require.NoError(t, os.Unsetenv("CONSOLE_AUTH_LEVEL"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ConsoleAuthLevel)
}

func TestCategoryWeight(t *testing.T) {
	assert.Less(t, CategoryWeight(CategoryInformation), CategoryWeight(CategorySettings))
	assert.Equal(t, 1000, CategoryWeight("unknown"))
}
