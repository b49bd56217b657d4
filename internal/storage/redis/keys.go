package redis

import (
	"fmt"

	"github.com/pickemleague/pickem-server/internal/model"
)

// Key prefix for all contest data
const keyPrefix = "pickem"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// credentialKey returns the Redis key for a Credential
func credentialKey(id model.UserID) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index.
// Claimed with SETNX so registration is an atomic check-and-insert.
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// adminsKey returns the Redis key for the SET of admin user ids
func adminsKey() string {
	return fmt.Sprintf("%s:idx:admins", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of all game keys
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// pickKey returns the Redis key for a Pick
func pickKey(id model.PickID) string {
	return fmt.Sprintf("%s:pick:%s", keyPrefix, id)
}

// weekGuardKey returns the Redis key claimed by the first pick a user
// submits in a week (week-scope locking)
func weekGuardKey(userID model.UserID, week int) string {
	return fmt.Sprintf("%s:guard:week:%s:%d", keyPrefix, userID, week)
}

// gameGuardKey returns the Redis key claimed by a user's pick for a
// single game (game-scope locking)
func gameGuardKey(userID model.UserID, gameID model.GameID) string {
	return fmt.Sprintf("%s:guard:game:%s:%s", keyPrefix, userID, gameID)
}

// picksForWeekIndexKey returns the Redis key for the SET of a user's pick
// keys within a week
func picksForWeekIndexKey(userID model.UserID, week int) string {
	return fmt.Sprintf("%s:idx:picks:%s:%d", keyPrefix, userID, week)
}
