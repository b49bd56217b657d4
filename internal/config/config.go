package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pickemleague/pickem-server/internal/model"
)

// StorageType selects the persistence backend
type StorageType string

const (
	StorageMemory   StorageType = "memory"
	StorageRedis    StorageType = "redis"
	StoragePostgres StorageType = "postgres"
)

type Config struct {
	HTTP    HTTPConfig
	Storage StorageConfig
	Auth    AuthConfig
	Picks   PicksConfig
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Type        StorageType
	RedisURL    string
	PostgresDSN string
}

type AuthConfig struct {
	AccessSecret      string
	RefreshSecret     string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	SeedAdminUsername string
	SeedAdminPassword string
}

type PicksConfig struct {
	LockScope model.LockScope
}

func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 10)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 20)) * time.Second,
		},
		Storage: StorageConfig{
			Type:        StorageType(getEnv("STORAGE_TYPE", string(StorageMemory))),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
		},
		Auth: AuthConfig{
			AccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret:     getEnv("JWT_REFRESH_SECRET", ""),
			AccessTTL:         time.Duration(getEnvInt("JWT_ACCESS_TTL_SEC", 900)) * time.Second,
			RefreshTTL:        time.Duration(getEnvInt("JWT_REFRESH_TTL_SEC", 604800)) * time.Second,
			SeedAdminUsername: getEnv("SEED_ADMIN_USERNAME", ""),
			SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		},
		Picks: PicksConfig{
			LockScope: model.LockScope(getEnv("PICK_LOCK_SCOPE", string(model.LockScopeWeek))),
		},
	}

	if cfg.HTTP.Addr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	switch cfg.Storage.Type {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return Config{}, fmt.Errorf("STORAGE_TYPE must be one of memory, redis, postgres; got %q", cfg.Storage.Type)
	}
	if cfg.Storage.Type == StoragePostgres && cfg.Storage.PostgresDSN == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN must be set when STORAGE_TYPE=postgres")
	}
	if cfg.Auth.AccessSecret == "" {
		return Config{}, fmt.Errorf("JWT_ACCESS_SECRET must not be empty")
	}
	if cfg.Auth.RefreshSecret == "" {
		return Config{}, fmt.Errorf("JWT_REFRESH_SECRET must not be empty")
	}
	if cfg.Auth.AccessSecret == cfg.Auth.RefreshSecret {
		return Config{}, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if cfg.Auth.AccessTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_ACCESS_TTL_SEC must be > 0")
	}
	if cfg.Auth.RefreshTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_REFRESH_TTL_SEC must be > 0")
	}
	if cfg.Auth.SeedAdminUsername != "" && cfg.Auth.SeedAdminPassword == "" {
		return Config{}, fmt.Errorf("SEED_ADMIN_PASSWORD must be set when SEED_ADMIN_USERNAME is set")
	}
	if !cfg.Picks.LockScope.Valid() {
		return Config{}, fmt.Errorf("PICK_LOCK_SCOPE must be week or game; got %q", cfg.Picks.LockScope)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
