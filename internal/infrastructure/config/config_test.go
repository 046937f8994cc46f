package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/delivery"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"STOREFRONT_APP_NAME":           os.Getenv("STOREFRONT_APP_NAME"),
		"STOREFRONT_APP_ENV":            os.Getenv("STOREFRONT_APP_ENV"),
		"STOREFRONT_APP_PORT":           os.Getenv("STOREFRONT_APP_PORT"),
		"STOREFRONT_DATABASE_HOST":      os.Getenv("STOREFRONT_DATABASE_HOST"),
		"STOREFRONT_DATABASE_PORT":      os.Getenv("STOREFRONT_DATABASE_PORT"),
		"STOREFRONT_DATABASE_USER":      os.Getenv("STOREFRONT_DATABASE_USER"),
		"STOREFRONT_DATABASE_PASSWORD":  os.Getenv("STOREFRONT_DATABASE_PASSWORD"),
		"STOREFRONT_DATABASE_DBNAME":    os.Getenv("STOREFRONT_DATABASE_DBNAME"),
		"STOREFRONT_DATABASE_SSLMODE":   os.Getenv("STOREFRONT_DATABASE_SSLMODE"),
		"STOREFRONT_HUB_BASE_URL":       os.Getenv("STOREFRONT_HUB_BASE_URL"),
		"STOREFRONT_HUB_FORMAT":         os.Getenv("STOREFRONT_HUB_FORMAT"),
		"STOREFRONT_HUB_METHOD":         os.Getenv("STOREFRONT_HUB_METHOD"),
		"STOREFRONT_HUB_DB":             os.Getenv("STOREFRONT_HUB_DB"),
		"STOREFRONT_HUB_DEFAULT_PARAMS": os.Getenv("STOREFRONT_HUB_DEFAULT_PARAMS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Dispatch.GuardEnabled)
		assert.NotZero(t, cfg.Dispatch.GuardTTL)
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_NAME", "test-app")
		os.Setenv("STOREFRONT_APP_PORT", "9000")
		os.Setenv("STOREFRONT_DATABASE_HOST", "testdb.local")
		os.Setenv("STOREFRONT_DATABASE_PORT", "5433")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
	})

	t.Run("production requires database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_ENV", "production")
		os.Setenv("STOREFRONT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("rejects unknown hub format", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_HUB_FORMAT", "carrier-pigeon")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hub.format")
	})

	t.Run("rejects malformed hub default params", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_HUB_DEFAULT_PARAMS", "{not json")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hub.default_params")
	})
}

func TestHubConfig_ToDomain(t *testing.T) {
	t.Run("empty config yields nil hub", func(t *testing.T) {
		h := HubConfig{}
		assert.Nil(t, h.ToDomain())
	})

	t.Run("full config maps onto the domain hub", func(t *testing.T) {
		h := HubConfig{
			BaseURL:                "https://hub.example/jsonrpc",
			Format:                 "jsonrpc",
			Method:                 "create_order",
			AuthMethod:             "basic",
			Username:               "u",
			Password:               "p",
			DB:                     "prod",
			APIKeyHeader:           "X-Hub-Key",
			DefaultParamsJSON:      `{"source":"storefront"}`,
			DefaultQueryParamsJSON: `{"version":"2"}`,
		}

		hub := h.ToDomain()
		require.NotNil(t, hub)
		assert.True(t, hub.Enabled())
		assert.Equal(t, delivery.ProtocolJSONRPC, hub.Format)
		assert.Equal(t, "create_order", hub.Method)
		assert.Equal(t, delivery.AuthBasic, hub.AuthMethod)
		assert.Equal(t, "prod", hub.Database())
		assert.Equal(t, map[string]string{"source": "storefront"}, hub.DefaultParams)
		assert.Equal(t, map[string]string{"version": "2"}, hub.DefaultQueryParams)
	})

	t.Run("method-only config still yields a hub", func(t *testing.T) {
		h := HubConfig{Method: "create_order"}
		hub := h.ToDomain()
		require.NotNil(t, hub)
		// No base URL means the hub supplies defaults but does not override routing.
		assert.False(t, hub.Enabled())
		assert.Equal(t, "create_order", hub.Method)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "storefront",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password are escaped.
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", r.Addr())
}
