package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/tmp/claimbridge.sock", cfg.Server.RPCSocket)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "claimbridge.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claimbridge.yaml")
	yaml := `
server:
  addr: ":9090"
  shutdown_timeout: 3s
database:
  driver: postgres
  dsn: postgres://localhost/claims
log:
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("CLAIMBRIDGE_SERVER_ADDR", ":7070")
	t.Setenv("CLAIMBRIDGE_SERVER_RPC_SOCKET", "/tmp/other.sock")
	t.Setenv("CLAIMBRIDGE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/other.sock", cfg.Server.RPCSocket)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/claims", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CLAIMBRIDGE_DATABASE_DRIVER", "mysql")
	t.Setenv("CLAIMBRIDGE_LOG_FORMAT", "xml")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.read_header_timeout", envKey("CLAIMBRIDGE_SERVER_READ_HEADER_TIMEOUT"))
	assert.Equal(t, "database.dsn", envKey("CLAIMBRIDGE_DATABASE_DSN"))
	assert.Equal(t, "debug", envKey("CLAIMBRIDGE_DEBUG"))
}
