package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "gearlog.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.False(t, cfg.IsProdLike())
}

func TestFromViper_CORSOrigins(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromViper_ProdRequiresSecret(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{"APP_ENV": "production"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg, err := fromViper(newViper(map[string]any{
		"APP_ENV":    "production",
		"JWT_SECRET": "a-real-secret",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.IsProdLike())
}

func TestFromViper_Invalid(t *testing.T) {
	cases := map[string]map[string]any{
		"bad ttl":       {"JWT_TTL": "soon"},
		"zero shutdown": {"SHUTDOWN_TIMEOUT": "0s"},
		"bad level":     {"LOG_LEVEL": "verbose"},
		"idle > open":   {"DB_MAX_OPEN_CONNS": 2, "DB_MAX_IDLE_CONNS": 3},
		"empty db":      {"DATABASE_URL": " "},
	}

	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fromViper(newViper(overrides))
			assert.Error(t, err)
		})
	}
}
