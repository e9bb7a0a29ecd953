package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TABLEGATE_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.APIRowListLimitMax)
	assert.Equal(t, 480, cfg.TokenTTLMinutes)
	assert.Equal(t, 5, cfg.DataPlaneMaxOpenConns)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "default", cfg.Source("token_ttl_minutes"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("token_ttl_minutes: 60\napi_row_list_limit_max: 250\ntrusted_proxies:\n  - 10.0.0.0/8\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), contents, 0o600))
	t.Setenv("TABLEGATE_CONFIG_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.TokenTTLMinutes)
	assert.Equal(t, 250, cfg.APIRowListLimitMax)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, "file", cfg.Source("token_ttl_minutes"))
	assert.Equal(t, "default", cfg.Source("data_plane_max_open_conns"))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("token_ttl_minutes: 60\n"), 0o600))
	t.Setenv("TABLEGATE_CONFIG_PATH", dir)
	t.Setenv("TABLEGATE_TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.TokenTTLMinutes)
	assert.Equal(t, "environment", cfg.Source("token_ttl_minutes"))
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o600))
	t.Setenv("TABLEGATE_CONFIG_PATH", dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := newDefault()
	assert.NoError(t, cfg.Validate())

	cfg.TrustedProxies = []string{"not-a-cidr"}
	assert.Error(t, cfg.Validate())

	cfg = newDefault()
	cfg.APIRowListLimitMax = 0
	assert.Error(t, cfg.Validate())

	cfg = newDefault()
	cfg.TrustedProxies = []string{"192.168.1.1"}
	assert.NoError(t, cfg.Validate(), "plain IPs are accepted")
}

func TestIsTrustedProxy(t *testing.T) {
	cfg := newDefault()
	cfg.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.1"}

	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.True(t, cfg.IsTrustedProxy("192.168.1.1"))
	assert.False(t, cfg.IsTrustedProxy("172.16.0.1"))
	assert.False(t, cfg.IsTrustedProxy("not-an-ip"))
}
