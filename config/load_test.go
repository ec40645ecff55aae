package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("NOTIFY_WORKERS", "nope")
	t.Setenv("OVERDUE_SWEEP_INTERVAL", "15m")
	t.Setenv("STORAGE_ENDPOINT", "")

	cfg := Load()
	require.Equal(t, DriverMemory, cfg.StoreDriver)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 2, cfg.NotifyWorkers)
	require.Equal(t, 15*time.Minute, cfg.OverdueSweep)
	require.False(t, cfg.Storage.Enabled())
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	require.Panics(t, func() { Load() })

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/library")
	t.Setenv("STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("STORAGE_ACCESS_KEY", "a")
	t.Setenv("STORAGE_SECRET_KEY", "b")
	t.Setenv("STORAGE_USE_SSL", "true")
	cfg := Load()
	require.Equal(t, "postgres://u:p@localhost:5432/library", cfg.DatabaseURL)
	require.True(t, cfg.Storage.Enabled())
	require.True(t, cfg.Storage.UseSSL)
}

func TestLoad_ReadsKeys(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_PORT", "8181")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_EMAIL", "admin@library.local")
	t.Setenv("NOTIFY_QUEUE_SIZE", "16")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("STORAGE_REGION", "eu-west-1")

	cfg := Load()
	require.Equal(t, "8181", cfg.Port)
	require.Equal(t, 2*time.Hour, cfg.JWTTTL)
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Equal(t, "admin@library.local", cfg.AdminEmail)
	require.Equal(t, 16, cfg.NotifyQueueSize)
	require.Equal(t, "book-covers", cfg.Storage.Bucket)
	require.Equal(t, "eu-west-1", cfg.Storage.Region)
}
