package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, "localhost:3000", cfg.ListenAddr)
	assert.Equal(t, time.Second, cfg.RefreshInterval)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Local, cfg.Location)
	assert.False(t, cfg.TUI)
	assert.False(t, cfg.Demo)
	assert.Equal(t, 5, cfg.DemoAgents)
	assert.InDelta(t, 100.0, cfg.RateLimit, 0)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"GOPHERWATCH_BACKEND_URL":      "https://watch.internal:9000",
		"GOPHERWATCH_REFRESH_INTERVAL": "2500ms",
		"GOPHERWATCH_TIMEZONE":         "UTC",
		"GOPHERWATCH_TUI":              "true",
		"GOPHERWATCH_DEMO":             "1",
		"GOPHERWATCH_DEMO_AGENTS":      "0",
		"GOPHERWATCH_CORS_ORIGINS":     "https://ops.example.com, ,http://localhost:5173",
		"GOPHERWATCH_DEMO_ALERT_DSN":   "sqlite:///tmp/alerts.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://watch.internal:9000", cfg.BackendURL)
	assert.Equal(t, 2500*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.TUI)
	assert.True(t, cfg.Demo)
	assert.Equal(t, 0, cfg.DemoAgents)
	assert.Equal(t, []string{"https://ops.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "sqlite:///tmp/alerts.db", cfg.DemoAlertDSN)
}

func TestFromLookupInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unparseable interval", map[string]string{"GOPHERWATCH_REFRESH_INTERVAL": "soon"}},
		{"zero interval", map[string]string{"GOPHERWATCH_REFRESH_INTERVAL": "0s"}},
		{"negative timeout", map[string]string{"GOPHERWATCH_REQUEST_TIMEOUT": "-1s"}},
		{"relative backend", map[string]string{"GOPHERWATCH_BACKEND_URL": "/api"}},
		{"ftp backend", map[string]string{"GOPHERWATCH_BACKEND_URL": "ftp://host"}},
		{"bad level", map[string]string{"GOPHERWATCH_LOG_LEVEL": "chatty"}},
		{"bad timezone", map[string]string{"GOPHERWATCH_TIMEZONE": "Mars/Olympus"}},
		{"bad bool", map[string]string{"GOPHERWATCH_TUI": "sometimes"}},
		{"negative agents", map[string]string{"GOPHERWATCH_DEMO_AGENTS": "-3"}},
		{"zero rate", map[string]string{"GOPHERWATCH_RATE_LIMIT": "0"}},
		{"unknown alert store", map[string]string{"GOPHERWATCH_DEMO_ALERT_DSN": "postgres://db/alerts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GOPHERWATCH_LISTEN_ADDR=0.0.0.0:4000\n"), 0o600))

	// godotenv never overrides variables that are already set.
	t.Setenv("GOPHERWATCH_LISTEN_ADDR", "")
	require.NoError(t, os.Unsetenv("GOPHERWATCH_LISTEN_ADDR"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4000", cfg.ListenAddr)
}
