package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the request body for refreshing an access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SubmitPickRequest is the request body for submitting a pick
type SubmitPickRequest struct {
	GameID string `json:"game_id"`
	Winner string `json:"winner"`
}

// CreateGameRequest is the request body for scheduling a game
type CreateGameRequest struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Week     int    `json:"week"`
}

// SetResultRequest is the request body for recording a game's result
type SetResultRequest struct {
	Winner string `json:"winner"`
}

// SetAdminRequest is the request body for granting or revoking admin
type SetAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}
