package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASCEND_TEST_API_KEY", "secret")

	path := writeFile(t, dir, "config.yaml", `
database:
  path: `+filepath.Join(dir, "db", "ascend.db")+`
api:
  api_key: ${ASCEND_TEST_API_KEY}
backup:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.APIKey)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "09:00", cfg.Availability.DefaultStartTime)
	assert.Equal(t, "17:00", cfg.Availability.DefaultEndTime)
	assert.Equal(t, "ascend:changes", cfg.Redis.Channel)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval())
	assert.Zero(t, cfg.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.DirectoryReloadInterval())
	assert.Equal(t, time.Minute, cfg.NotificationCheckInterval())

	_, err = os.Stat(filepath.Join(dir, "db"))
	assert.NoError(t, err, "database directory should be created")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Location(t *testing.T) {
	var cfg Config
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Availability.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())

	cfg.Availability.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestBackupConfig_Interval(t *testing.T) {
	assert.Equal(t, 6*time.Hour, BackupConfig{IntervalHours: 6}.Interval())
	assert.Equal(t, 24*time.Hour, BackupConfig{IntervalHours: -1}.Interval())
}
