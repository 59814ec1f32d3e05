package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drive.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: super-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Defaults fill in the rest
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "drive.db", cfg.Database.Path)
	assert.Equal(t, "disk", cfg.Blob.Backend)
	assert.Equal(t, "uploads", cfg.Blob.Dir)
	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Suggest.Enabled)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("DRIVE_TEST_SECRET", "from-env")

	path := writeConfig(t, `
auth:
  jwt_secret: ${DRIVE_TEST_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: 127.0.0.1:9000
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_MinioRequiresEndpoint(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s
blob:
  backend: minio
  minio:
    bucket: drive
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minio.endpoint")
}

func TestLoad_UnknownBlobBackend(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s
blob:
  backend: tape
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob.backend")
}

func TestLoad_SuggestRequiresKey(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s
suggest:
  enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
