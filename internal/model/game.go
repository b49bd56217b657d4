package model

import "time"

// GameID uniquely identifies a game
type GameID string

// Game is a single matchup within a contest week.
// Winner is empty until an admin records the result; setting it again
// overwrites the previous value, no history is kept.
type Game struct {
	ID        GameID    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Week      int       `json:"week"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTeam reports whether name matches one of the game's two teams
func (g *Game) HasTeam(name string) bool {
	return name == g.HomeTeam || name == g.AwayTeam
}
