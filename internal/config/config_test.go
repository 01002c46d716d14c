package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Address)
	assert.Equal(t, "ledgerly.db", c.Database.Path)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
database:
  path: /var/lib/ledgerly/ledgerly.db
sync:
  project_id: my-project
  user_id: user-1
backup:
  bucket: ledgerly-snapshots
log:
  level: debug
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Address)
	assert.Equal(t, "/var/lib/ledgerly/ledgerly.db", c.Database.Path)
	assert.Equal(t, "my-project", c.Sync.ProjectID)
	assert.Equal(t, "user-1", c.Sync.UserID)
	assert.Equal(t, "ledgerly-snapshots", c.Backup.Bucket)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEDGERLY_SERVER_ADDRESS", ":7777")
	t.Setenv("LEDGERLY_SYNC_PROJECT_ID", "env-project")
	t.Setenv("LEDGERLY_SYNC_USER_ID", "env-user")
	t.Setenv("LEDGERLY_BACKUP_BUCKET", "env-bucket")
	t.Setenv("LEDGERLY_LOG_LEVEL", "warn")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7777", c.Server.Address)
	assert.Equal(t, "env-project", c.Sync.ProjectID)
	assert.Equal(t, "env-user", c.Sync.UserID)
	assert.Equal(t, "env-bucket", c.Backup.Bucket)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
`), 0o600))

	t.Setenv("LEDGERLY_SERVER_ADDRESS", ":7777")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", c.Server.Address, "environment wins over the file")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
