package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DASHBOARD_HOST", "DASHBOARD_PORT", "CORS_ORIGINS", "KUBECONFIG",
		"GPUDASH_SOURCE", "GPUDASH_SERVER_ADDR", "GPUDASH_CORS_ORIGINS", "GPUDASH_POLL_INTERVAL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("HOME", "/home/ops")
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, SourceK8s, cfg.Source)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, "/home/ops/.kube/config", cfg.Kube.Config)
	assert.Equal(t, float32(30), cfg.Kube.QPS)
	assert.Equal(t, 60, cfg.Kube.Burst)
	assert.Equal(t, "nvidia.com/gpu", cfg.GPU.Resource)
	assert.Equal(t, "nvidia.com/gpu.product", cfg.GPU.TypeLabels[0])
	assert.Len(t, cfg.GPU.TypeLabels, 5)
	assert.Equal(t, 15*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
}

func TestLegacyEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://a.example.com, http://b.example.com")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.CORS.Origins)
}

func TestPrefixedEnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_PORT", "9000")
	t.Setenv("GPUDASH_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("GPUDASH_POLL_INTERVAL", "30s")
	t.Setenv("GPUDASH_SOURCE", "mock")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval)
	assert.Equal(t, SourceMock, cfg.Source)
}

func TestConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "gpudash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: remote
remote:
  url: http://gpudash.monitoring:8000
kube:
  context: prod-us-east-1
gpu:
  resource: amd.com/gpu
  type_labels: [amd.com/gpu.product-name]
cache:
  ttl: 0s
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, cfg.Source)
	assert.Equal(t, "http://gpudash.monitoring:8000", cfg.Remote.URL)
	assert.Equal(t, "prod-us-east-1", cfg.Kube.Context)
	assert.Equal(t, []string{"amd.com/gpu.product-name"}, cfg.GPU.TypeLabels)
	assert.Zero(t, cfg.Cache.TTL)

	opts := cfg.KubeOptions()
	assert.Equal(t, "amd.com/gpu", opts.GPUResource)
	assert.Equal(t, "prod-us-east-1", opts.Context)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	v := New()
	v.Set("source", "prometheus")
	_, err = Load(v, "")
	assert.ErrorContains(t, err, `unknown source "prometheus"`)

	v = New()
	v.Set("source", SourceRemote)
	_, err = Load(v, "")
	assert.ErrorContains(t, err, "remote.url")

	v = New()
	v.Set("poll.interval", "0s")
	_, err = Load(v, "")
	assert.ErrorContains(t, err, "poll.interval")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GPUDASH_SOURCE=mock\nDASHBOARD_PORT=8100\n"), 0o600))
	t.Setenv("DASHBOARD_PORT", "8200")
	t.Cleanup(func() { _ = os.Unsetenv("GPUDASH_SOURCE") })

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, SourceMock, cfg.Source)
	assert.Equal(t, "0.0.0.0:8200", cfg.Server.Addr, "existing variables are not overridden")
}
