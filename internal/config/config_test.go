package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, StoreMemory, cfg.Server.Store)
	assert.Equal(t, time.UTC, cfg.Location())

	base, err := cfg.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, DevelopmentBaseURL, base)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
env: production
log_level: debug
client:
  base_url: https://habits.example.com/api/
  timeout: 5s
  timezone: Europe/Berlin
server:
  addr: ":9090"
  store: postgres
  database_url: postgres://localhost/habits
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.NoError(t, cfg.ValidateServer())
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())

	base, err := cfg.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://habits.example.com/api", base)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "colour: blue\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HABITS_ENV", "production")
	t.Setenv("HABITS_API_URL", "http://api.internal:8080/api")
	t.Setenv("HABITS_TIMEOUT", "2s")
	t.Setenv("HABITS_STORE", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "cache:6379", cfg.Server.Redis.Addr)
	assert.Equal(t, 3, cfg.Server.Redis.DB)
	assert.NoError(t, cfg.ValidateServer())

	base, err := cfg.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:8080/api", base)
}

func TestLoad_BadEnvValues(t *testing.T) {
	t.Setenv("HABITS_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestBaseURL_ProductionRequiresExplicitURL(t *testing.T) {
	cfg := Default()
	cfg.Env = EnvProduction

	_, err := cfg.BaseURL()
	assert.ErrorIs(t, err, ErrBaseURLRequired)
}

func TestBaseURL_RejectsRelative(t *testing.T) {
	cfg := Default()
	cfg.Client.BaseURL = "/api"

	_, err := cfg.BaseURL()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"negative timeout", func(c *Config) { c.Client.Timeout = -time.Second }},
		{"bad timezone", func(c *Config) { c.Client.Timezone = "Mars/Olympus" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := Default()
	cfg.Server.Store = StorePostgres
	assert.Error(t, cfg.ValidateServer())

	cfg.Server.Store = StoreRedis
	cfg.Server.Redis.Addr = ""
	assert.Error(t, cfg.ValidateServer())

	cfg.Server.Store = "mongo"
	assert.Error(t, cfg.ValidateServer())
}
