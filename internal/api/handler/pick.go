package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pickemleague/pickem-server/internal/api/middleware"
	"github.com/pickemleague/pickem-server/internal/api/request"
	"github.com/pickemleague/pickem-server/internal/api/response"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/picks"
)

// PickHandler handles pick submission and listing endpoints
type PickHandler struct {
	picksService *picks.Service
}

// NewPickHandler creates a new pick handler
func NewPickHandler(picksService *picks.Service) *PickHandler {
	return &PickHandler{
		picksService: picksService,
	}
}

// Submit handles POST /api/v1/picks
func (h *PickHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.SubmitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.GameID == "" {
		WriteError(w, NewInvalidRequestError("game_id is required"))
		return
	}
	if req.Winner == "" {
		WriteError(w, NewInvalidRequestError("winner is required"))
		return
	}

	pick, err := h.picksService.Submit(r.Context(), userID, model.GameID(req.GameID), req.Winner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PickFromModel(pick))
}

// ListForWeek handles GET /api/v1/picks/week/{week}
func (h *PickHandler) ListForWeek(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	week, err := strconv.Atoi(mux.Vars(r)["week"])
	if err != nil || week < 1 {
		WriteError(w, NewInvalidRequestError("week must be a positive integer"))
		return
	}

	picks, err := h.picksService.ListForWeek(r.Context(), userID, week)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PickListFromModels(picks))
}
