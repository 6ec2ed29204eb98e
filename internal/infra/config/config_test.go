package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: debug
resolver:
  base_url: https://api.example.com
  quality: 160kbps
store:
  base_url: https://store.example.com/v1
  user_id: user-1
player:
  volume: 80
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Output, "default applies when omitted")
	assert.Equal(t, "https://api.example.com", cfg.Resolver.BaseURL)
	assert.Equal(t, "160kbps", cfg.Resolver.Quality)
	assert.Equal(t, 10*time.Second, cfg.ResolverTimeout(), "default timeout applies")
	assert.Equal(t, "user-1", cfg.Store.UserID)
	assert.Equal(t, 80, cfg.Player.Volume)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
resolver:
  base_url: https://api.example.com
store:
  base_url: https://store.example.com/v1
  user_id: from-file
`)

	t.Setenv("STORE_USER_ID", "from-env")
	t.Setenv("STORE_CLIENT_ID", "env-client")
	t.Setenv("STORE_CLIENT_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Store.UserID)
	assert.Equal(t, "env-client", cfg.Store.ClientID)
	assert.Equal(t, "env-secret", cfg.Store.ClientSecret)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Log:      LogConfig{Output: "console", Level: "info", File: "tonearm.log"},
			Resolver: ResolverConfig{BaseURL: "https://api.example.com", TimeoutMs: 10000, Quality: "320kbps"},
			Store:    StoreConfig{BaseURL: "https://store.example.com", UserID: "user-1", TimeoutMs: 10000},
			Player:   PlayerConfig{Volume: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing resolver base url",
			mutate:  func(c *Config) { c.Resolver.BaseURL = "" },
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name:    "missing store user id",
			mutate:  func(c *Config) { c.Store.UserID = "" },
			wantErr: true,
			errMsg:  "UserID",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errMsg:  "Level",
		},
		{
			name:    "volume out of range",
			mutate:  func(c *Config) { c.Player.Volume = 150 },
			wantErr: true,
			errMsg:  "Volume",
		},
		{
			name:    "token url without credentials",
			mutate:  func(c *Config) { c.Store.TokenURL = "https://auth.example.com/token" },
			wantErr: true,
			errMsg:  "client_id",
		},
		{
			name: "token url with credentials",
			mutate: func(c *Config) {
				c.Store.TokenURL = "https://auth.example.com/token"
				c.Store.ClientID = "id"
				c.Store.ClientSecret = "secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}
