package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/mvu/internal/errors"
)

func TestNewDefaultsAreValid(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, "id-indirection", cfg.Runtime.Transport)
	assert.Equal(t, "queue", cfg.Runtime.Concurrency)
	assert.Equal(t, "r", cfg.Runtime.RootID)
	assert.Equal(t, int64(64*1024), cfg.Server.MaxMessageSize)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestParseYAMLOverridesDefaults(t *testing.T) {
	data := []byte(`
server:
  address: "127.0.0.1:9000"
  write_timeout: 2s
  allowed_origins: https://a.example,https://b.example
runtime:
  transport: inline-serialization
  codec: cbor
  concurrency: reject
log:
  level: debug
  format: json
publish:
  bucket: site
  path_style: true
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout, "unset fields keep defaults")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "inline-serialization", cfg.Runtime.Transport)
	assert.Equal(t, "cbor", cfg.Runtime.Codec)
	assert.Equal(t, "reject", cfg.Runtime.Concurrency)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "site", cfg.Publish.Bucket)
	assert.True(t, cfg.Publish.PathStyle)
	assert.Equal(t, "us-east-1", cfg.Publish.Region)
}

func TestParseJSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"runtime": {"codec": "json"}, "metrics": {"enabled": false}}`))
	require.NoError(t, err)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"unknown key", "server:\n  adress: x\n", "M020"},
		{"bad duration", "server:\n  read_timeout: soon\n", "M020"},
		{"heartbeat not below read timeout", "server:\n  read_timeout: 10s\n  heartbeat_interval: 10s\n", "M020"},
		{"unknown transport", "runtime:\n  transport: carrier-pigeon\n", "M020"},
		{"unknown codec", "runtime:\n  codec: xml\n", "M020"},
		{"unknown concurrency", "runtime:\n  concurrency: parallel\n", "M020"},
		{"bad root id", "runtime:\n  root_id: a.b\n", "M020"},
		{"bad level", "log:\n  level: loud\n", "M020"},
		{"relative metrics path", "metrics:\n  path: metrics\n", "M020"},
		{"not yaml", "server: [", "M021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)

			var coded *errors.Error
			require.True(t, stderrors.As(err, &coded), "error %v is not coded", err)
			assert.Equal(t, tt.code, coded.Code)
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := New()
	cfg.Runtime.Transport = "x"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.(*errors.Error).Detail, "runtime.transport")
	assert.Contains(t, err.(*errors.Error).Detail, "log.format")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mvu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  title: Demo\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo", cfg.Server.Title)
	assert.Equal(t, path, cfg.Path())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptional(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path())

	require.NoError(t, os.WriteFile(DefaultFileName, []byte("log:\n  level: warn\n"), 0o644))
	cfg, err = LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultFileName, cfg.Path())
}
