package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/pickemleague/pickem-server/internal/dependencies/clock"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/auth"
	"github.com/pickemleague/pickem-server/internal/services/games"
	"github.com/pickemleague/pickem-server/internal/services/picks"
	"github.com/pickemleague/pickem-server/internal/services/token"
	"github.com/pickemleague/pickem-server/internal/storage"
	"github.com/pickemleague/pickem-server/internal/storage/memory"
	"github.com/pickemleague/pickem-server/internal/storage/postgres"
	redisstorage "github.com/pickemleague/pickem-server/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	TokenService *token.Service
	AuthService  *auth.Service
	GamesService *games.Service
	PicksService *picks.Service
}

// Config holds configuration for the application factory
type Config struct {
	// TokenConfig holds signing secrets and token lifetimes (required)
	TokenConfig token.Config
	// LockScope selects the pick submission lock scope (optional)
	// If empty, defaults to the week scope
	LockScope model.LockScope
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN is the Postgres connection string (required if StorageType is "postgres")
	PostgresDSN string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if len(cfg.TokenConfig.AccessSecret) == 0 || len(cfg.TokenConfig.RefreshSecret) == 0 {
		return nil, errors.New("TokenConfig secrets are required")
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		pgStore, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	clk := clock.New()

	return newWithDependencies(store, clk, cfg.TokenConfig, cfg.LockScope, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, tokenCfg token.Config, scope model.LockScope, logger *slog.Logger) *App {
	tokenService := token.New(tokenCfg, clk)
	authService := auth.New(store, tokenService, clk, logger)
	gamesService := games.New(store, clk, logger)
	picksService := picks.New(store, clk, logger, scope)

	return &App{
		Storage:      store,
		Clock:        clk,
		TokenService: tokenService,
		AuthService:  authService,
		GamesService: gamesService,
		PicksService: picksService,
	}
}
