package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pickemleague/pickem-server/internal/api/request"
	"github.com/pickemleague/pickem-server/internal/api/response"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/auth"
)

// AdminHandler handles user administration endpoints
type AdminHandler struct {
	authService *auth.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service) *AdminHandler {
	return &AdminHandler{
		authService: authService,
	}
}

// SetAdmin handles PUT /api/v1/admin/users/{user_id}
func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	targetID := model.UserID(mux.Vars(r)["user_id"])

	var req request.SetAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	role := model.RoleMember
	if req.IsAdmin {
		role = model.RoleAdmin
	}

	user, err := h.authService.SetRole(r.Context(), targetID, role)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
