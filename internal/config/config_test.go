package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"CONFIG_FILE", "APP_PORT", "STATE_URL", "STATE_WRITE_BEHIND", "GCS_CREDENTIALS_FILE",
	"ADMIN_PASSWORD_HASH", "JWT_SECRET", "ADMIN_TOKEN_TTL", "LOG_LEVEL", "LOG_FORMAT",
	"VOTE_RATE_PER_SEC", "VOTE_BURST", "WS_ALLOWED_ORIGINS",
}

// clearEnv isolates the test from the caller's environment and any .env in
// the package directory.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data", cfg.StateURL)
	assert.Equal(t, 12*time.Hour, cfg.AdminTokenTTL)
	assert.Equal(t, []string{"*"}, cfg.WSAllowedOrigins)
	assert.Equal(t, 10, cfg.VoteBurst)
	assert.False(t, cfg.WriteBehind(false))
	assert.True(t, cfg.WriteBehind(true))
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "songvote.yaml")
	body := "port: \"9090\"\nstate_url: sqlite:///tmp/songvote.db\nadmin_token_ttl: 30m\nvote_burst: 4\nws_allowed_origins:\n  - https://stage.example\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("STATE_WRITE_BEHIND", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "sqlite:///tmp/songvote.db", cfg.StateURL)
	assert.Equal(t, 30*time.Minute, cfg.AdminTokenTTL)
	assert.Equal(t, 4, cfg.VoteBurst)
	assert.Equal(t, []string{"https://stage.example"}, cfg.WSAllowedOrigins)
	assert.True(t, cfg.WriteBehind(false))
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ADMIN_TOKEN_TTL":    "soon",
		"VOTE_BURST":         "many",
		"VOTE_RATE_PER_SEC":  "-1",
		"STATE_WRITE_BEHIND": "sometimes",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

func TestLoadRequiresSecretWithAdminHash(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", devJWTSecret)
	_, err = Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "stage-only-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "stage-only-secret", cfg.JWTSecret)
}
