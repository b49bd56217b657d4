package response

import (
	"time"

	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/auth"
)

// User represents a user in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// RegisterResponse is the response for the register endpoint
type RegisterResponse struct {
	User User `json:"user"`
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponseFromPair creates an AuthResponse from a token pair
func AuthResponseFromPair(pair *auth.TokenPair) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(pair.User),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

// RefreshResponse is the response for the token refresh endpoint
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Game represents a game in API responses
type Game struct {
	ID       string `json:"id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Week     int    `json:"week"`
	Winner   string `json:"winner,omitempty"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	return Game{
		ID:       string(g.ID),
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		Week:     g.Week,
		Winner:   g.Winner,
	}
}

// GameList is the response for listing games
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModels converts a slice of games
func GameListFromModels(games []*model.Game) GameList {
	out := GameList{Games: make([]Game, 0, len(games))}
	for _, g := range games {
		out.Games = append(out.Games, GameFromModel(g))
	}
	return out
}

// Pick represents a recorded pick in API responses
type Pick struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Week      int       `json:"week"`
	Winner    string    `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}

// PickFromModel converts a model.Pick to a response Pick
func PickFromModel(p *model.Pick) Pick {
	return Pick{
		ID:        string(p.ID),
		GameID:    string(p.GameID),
		Week:      p.Week,
		Winner:    p.Winner,
		CreatedAt: p.CreatedAt,
	}
}

// PickList is the response for listing picks
type PickList struct {
	Picks []Pick `json:"picks"`
}

// PickListFromModels converts a slice of picks
func PickListFromModels(picks []*model.Pick) PickList {
	out := PickList{Picks: make([]Pick, 0, len(picks))}
	for _, p := range picks {
		out.Picks = append(out.Picks, PickFromModel(p))
	}
	return out
}
