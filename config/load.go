package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads .env (when present) and then the process environment, which
// wins over the file.
func Load() App {
	_ = godotenv.Load()

	cfg := App{
		Port:        getenv("APP_PORT", getenv("PORT", "8080")),
		Env:         getenv("APP_ENV", "dev"),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverPostgres)),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		JWTTTL:      time.Duration(getint("JWT_TTL_HOURS", 24)) * time.Hour,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		NotifyWorkers:   getint("NOTIFY_WORKERS", 2),
		NotifyQueueSize: getint("NOTIFY_QUEUE_SIZE", 256),
		OverdueSweep:    getduration("OVERDUE_SWEEP_INTERVAL", time.Hour),

		Storage: Storage{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    getenv("STORAGE_BUCKET", "book-covers"),
			Region:    getenv("STORAGE_REGION", "us-east-1"),
			UseSSL:    getbool("STORAGE_USE_SSL", false),
			PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
		},
	}
	if cfg.StoreDriver == DriverPostgres {
		cfg.DatabaseURL = must("DATABASE_URL")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "local_dev_secret" {
		slog.Warn("JWT_SECRET not set outside dev", "env", cfg.Env)
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid int env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return n
}

func getbool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return b
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
