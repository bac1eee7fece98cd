package config

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"DB_DSN": "postgres://localhost/shop"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:5000", cfg.WebAppURL)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "videos", cfg.VideosDir)
	assert.True(t, cfg.DeliveryMobileOnly)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenPurgeInterval)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DB_DSN":                     "postgres://localhost/shop",
		"TELEGRAM_TOKEN":             "123:abc",
		"ENV":                        "production",
		"ADMIN_ID":                   "1000",
		"TOKEN_EXPIRY_HOURS":         "2",
		"TOKEN_PURGE_INTERVAL_HOURS": "0",
		"DELIVERY_MOBILE_ONLY":       "false",
		"REDIS_ADDR":                 "localhost:6379",
		"REDIS_DB":                   "3",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(1000), cfg.AdminID)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Zero(t, cfg.TokenPurgeInterval)
	assert.False(t, cfg.DeliveryMobileOnly)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.NoError(t, cfg.RequireBot())
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing dsn":    {},
		"bad admin":      {"DB_DSN": "x", "ADMIN_ID": "abc"},
		"bad bool":       {"DB_DSN": "x", "DELIVERY_MOBILE_ONLY": "maybe"},
		"zero ttl":       {"DB_DSN": "x", "TOKEN_EXPIRY_HOURS": "0"},
		"negative purge": {"DB_DSN": "x", "TOKEN_PURGE_INTERVAL_HOURS": "-1"},
		// 5124096 часов переполняют int64 и дают положительное значение
		"ttl overflow":     {"DB_DSN": "x", "TOKEN_EXPIRY_HOURS": "5124096"},
		"session overflow": {"DB_DSN": "x", "SESSION_TTL_HOURS": "9223372036854775807"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}

func TestFromEnvMaxHours(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DB_DSN":             "x",
		"TOKEN_EXPIRY_HOURS": strconv.FormatInt(maxHours, 10),
	}))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(maxHours)*time.Hour, cfg.TokenTTL)

	_, err = FromEnv(env(map[string]string{
		"DB_DSN":             "x",
		"TOKEN_EXPIRY_HOURS": strconv.FormatInt(maxHours+1, 10),
	}))
	assert.Error(t, err)
}

func TestRequireBot(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"DB_DSN": "x"}))
	require.NoError(t, err)
	assert.Error(t, cfg.RequireBot())

	cfg.TelegramToken = "123:abc"
	assert.Error(t, cfg.RequireBot(), "admin id is still missing")

	cfg.AdminID = 1
	assert.NoError(t, cfg.RequireBot())
}
