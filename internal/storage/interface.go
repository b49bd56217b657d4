package storage

import (
	"context"

	"github.com/pickemleague/pickem-server/internal/model"
)

// Storage defines the interface for data persistence.
//
// Cross-request mutual exclusion is delegated entirely to the
// implementation: InsertUser and InsertPick must be atomic
// check-and-insert operations, never a read followed by a write.
type Storage interface {
	// User operations. InsertUser atomically claims the username and
	// returns model.ErrUsernameExists if it is already taken.
	InsertUser(ctx context.Context, user *model.User, cred *model.Credential) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetCredentialByUsername(ctx context.Context, username string) (*model.Credential, error)
	UpdateUserRole(ctx context.Context, id model.UserID, role model.Role) (*model.User, error)
	CountAdmins(ctx context.Context) (int, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)

	// Pick operations. InsertPick atomically claims the lock key implied
	// by scope — (user, week) for LockScopeWeek, (user, game) for
	// LockScopeGame — and returns model.ErrPickExists if a conflicting
	// pick already holds it.
	InsertPick(ctx context.Context, pick *model.Pick, scope model.LockScope) error
	ListPicksForWeek(ctx context.Context, userID model.UserID, week int) ([]*model.Pick, error)
}
