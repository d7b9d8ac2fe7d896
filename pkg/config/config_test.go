package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Engine.LockTimeout)
	assert.Equal(t, 4, cfg.Engine.MaxAttempts)
	assert.Equal(t, 10, cfg.Report.LowStockThreshold)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EngineOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENGINE_LOCK_TIMEOUT", "250ms")
	t.Setenv("ENGINE_RETRY_BACKOFF", "5")
	t.Setenv("ENGINE_MAX_ATTEMPTS", "6")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Engine.LockTimeout)
	assert.Equal(t, 5*time.Millisecond, cfg.Engine.RetryBackoff)
	assert.Equal(t, 6, cfg.Engine.MaxAttempts)
}

func TestLoad_RechazaConfiguracionInvalida(t *testing.T) {
	// driver desconocido
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)

	// un solo intento no permite reintentar contención
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENGINE_MAX_ATTEMPTS", "1")
	_, err = config.Load()
	assert.Error(t, err)

	// cron sin usuario de sistema
	t.Setenv("ENGINE_MAX_ATTEMPTS", "3")
	t.Setenv("REPORT_CRON", "0 0 23 * * *")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:w/rd", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aw%2Frd@db:5432/pos?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
