package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pickemleague/pickem-server/internal/api/handler"
	apimiddleware "github.com/pickemleague/pickem-server/internal/api/middleware"
	"github.com/pickemleague/pickem-server/internal/middleware"
	"github.com/pickemleague/pickem-server/internal/services/auth"
	"github.com/pickemleague/pickem-server/internal/services/games"
	"github.com/pickemleague/pickem-server/internal/services/picks"
	"github.com/pickemleague/pickem-server/internal/services/token"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	TokenService *token.Service
	AuthService  *auth.Service
	GamesService *games.Service
	PicksService *picks.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.GamesService)
	pickHandler := handler.NewPickHandler(cfg.PicksService)
	adminHandler := handler.NewAdminHandler(cfg.AuthService)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.TokenService)
	adminMiddleware := apimiddleware.RequireAdmin(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no token required)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)

	// Protected auth routes
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/me", authHandler.GetMe).Methods(http.MethodGet)

	// Game routes (require auth)
	gamesRoutes := api.PathPrefix("/games").Subrouter()
	gamesRoutes.Use(authMiddleware)
	gamesRoutes.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	gamesRoutes.HandleFunc("/{game_id}", gameHandler.Get).Methods(http.MethodGet)

	// Pick routes (require auth)
	picksRoutes := api.PathPrefix("/picks").Subrouter()
	picksRoutes.Use(authMiddleware)
	picksRoutes.HandleFunc("", pickHandler.Submit).Methods(http.MethodPost)
	picksRoutes.HandleFunc("/week/{week}", pickHandler.ListForWeek).Methods(http.MethodGet)

	// Admin routes (require auth plus a live admin role check)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(adminMiddleware)
	admin.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/games/{game_id}/result", gameHandler.SetResult).Methods(http.MethodPut)
	admin.HandleFunc("/users/{user_id}", adminHandler.SetAdmin).Methods(http.MethodPut)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
