package config

import "time"

// App is filled by Load; comments name the environment keys.
type App struct {
	Port        string // APP_PORT, then PORT
	Env         string // APP_ENV
	StoreDriver string // STORE_DRIVER: postgres | memory
	DatabaseURL string // DATABASE_URL, required for postgres
	JWTSecret   string
	JWTTTL      time.Duration // JWT_TTL_HOURS, whole hours

	AdminEmail    string
	AdminPassword string

	NotifyWorkers   int
	NotifyQueueSize int
	OverdueSweep    time.Duration // OVERDUE_SWEEP_INTERVAL, Go duration syntax

	Storage Storage
}

// Storage holds the STORAGE_* keys.
type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// Enabled reports whether enough is set to talk to object storage.
func (s Storage) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}
