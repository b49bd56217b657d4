package model

import "time"

// PickID uniquely identifies a pick
type PickID string

// LockScope controls how widely a submitted pick locks out further
// submissions for the same user.
type LockScope string

const (
	// LockScopeWeek locks the user's entire contest week on the first
	// pick, matching the original contest rules.
	LockScopeWeek LockScope = "week"
	// LockScopeGame locks only the picked game, allowing one pick per
	// game within a week.
	LockScopeGame LockScope = "game"
)

// Valid reports whether the scope is one of the known scopes
func (s LockScope) Valid() bool {
	return s == LockScopeWeek || s == LockScopeGame
}

// Pick is a user's claimed winner for one game. Week is copied from the
// game at submission time so week-level queries never need a join.
// Picks are immutable once inserted.
type Pick struct {
	ID        PickID    `json:"id"`
	UserID    UserID    `json:"user_id"`
	GameID    GameID    `json:"game_id"`
	Week      int       `json:"week"`
	Winner    string    `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}
