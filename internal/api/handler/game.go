package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pickemleague/pickem-server/internal/api/request"
	"github.com/pickemleague/pickem-server/internal/api/response"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/games"
)

// GameHandler handles schedule and result endpoints
type GameHandler struct {
	gamesService *games.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(gamesService *games.Service) *GameHandler {
	return &GameHandler{
		gamesService: gamesService,
	}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gamesService.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModels(games))
}

// Get handles GET /api/v1/games/{game_id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	game, err := h.gamesService.Get(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}

// Create handles POST /api/v1/admin/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	game, err := h.gamesService.Create(r.Context(), req.HomeTeam, req.AwayTeam, req.Week)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(game))
}

// SetResult handles PUT /api/v1/admin/games/{game_id}/result
func (h *GameHandler) SetResult(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["game_id"])

	var req request.SetResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Winner == "" {
		WriteError(w, NewInvalidRequestError("winner is required"))
		return
	}

	game, err := h.gamesService.SetResult(r.Context(), gameID, req.Winner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}
