package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "sqlite storage needs no database password",
			env:  map[string]string{"STORAGE": "sqlite", "DB_PASSWORD": ""},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, StorageSQLite, cfg.Storage)
				assert.Equal(t, ":memory:", cfg.Database.SQLitePath)
				assert.Equal(t, "8080", cfg.Server.Port)
				assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, time.Hour, cfg.Redis.ChainCacheTTL)
				assert.False(t, cfg.Redis.Enabled)
			},
		},
		{
			name:    "postgres storage requires a password",
			env:     map[string]string{"STORAGE": "postgres", "DB_PASSWORD": ""},
			wantErr: "missing database password",
		},
		{
			name:    "unknown storage",
			env:     map[string]string{"STORAGE": "memory"},
			wantErr: "unknown storage backend",
		},
		{
			name:    "bad timeout",
			env:     map[string]string{"STORAGE": "sqlite", "REQUEST_TIMEOUT": "soon"},
			wantErr: "invalid request timeout",
		},
		{
			name: "redis enabled with custom ttl",
			env: map[string]string{
				"STORAGE":         "postgres",
				"DB_PASSWORD":     "secret",
				"REDIS_ENABLED":   "true",
				"CHAIN_CACHE_TTL": "5m",
				"REDIS_DB":        "2",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Redis.Enabled)
				assert.Equal(t, 5*time.Minute, cfg.Redis.ChainCacheTTL)
				assert.Equal(t, 2, cfg.Redis.RedisDB)
				assert.Equal(t, "secret", cfg.Database.Password)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"STORAGE", "DB_PASSWORD", "REQUEST_TIMEOUT", "REDIS_ENABLED", "CHAIN_CACHE_TTL", "REDIS_DB", "SQLITE_PATH"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
