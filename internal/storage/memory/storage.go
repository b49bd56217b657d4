package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	credentials   map[model.UserID]*model.Credential
	usernameIndex map[string]model.UserID
	games         map[model.GameID]*model.Game
	picks         map[model.PickID]*model.Pick
	weekGuards    map[weekKey]model.PickID
	gameGuards    map[gameKey]model.PickID
}

type weekKey struct {
	userID model.UserID
	week   int
}

type gameKey struct {
	userID model.UserID
	gameID model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		credentials:   make(map[model.UserID]*model.Credential),
		usernameIndex: make(map[string]model.UserID),
		games:         make(map[model.GameID]*model.Game),
		picks:         make(map[model.PickID]*model.Pick),
		weekGuards:    make(map[weekKey]model.PickID),
		gameGuards:    make(map[gameKey]model.PickID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) InsertUser(ctx context.Context, user *model.User, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernameIndex[user.Username]; taken {
		return model.ErrUsernameExists
	}
	s.users[user.ID] = user
	s.credentials[user.ID] = cred
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetCredentialByUsername(ctx context.Context, username string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cred, ok := s.credentials[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cred, nil
}

func (s *Storage) UpdateUserRole(ctx context.Context, id model.UserID, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	updated := *user
	updated.Role = role
	s.users[id] = &updated
	return &updated, nil
}

func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Role == model.RoleAdmin {
			count++
		}
	}
	return count, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].Week != games[j].Week {
			return games[i].Week < games[j].Week
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

// Pick operations

func (s *Storage) InsertPick(ctx context.Context, pick *model.Pick, scope model.LockScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wk := weekKey{userID: pick.UserID, week: pick.Week}
	gk := gameKey{userID: pick.UserID, gameID: pick.GameID}

	switch scope {
	case model.LockScopeWeek:
		if _, exists := s.weekGuards[wk]; exists {
			return model.ErrPickExists
		}
	default:
		if _, exists := s.gameGuards[gk]; exists {
			return model.ErrPickExists
		}
	}

	s.picks[pick.ID] = pick
	s.gameGuards[gk] = pick.ID
	if _, exists := s.weekGuards[wk]; !exists {
		s.weekGuards[wk] = pick.ID
	}
	return nil
}

func (s *Storage) ListPicksForWeek(ctx context.Context, userID model.UserID, week int) ([]*model.Pick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	picks := make([]*model.Pick, 0)
	for _, pick := range s.picks {
		if pick.UserID == userID && pick.Week == week {
			picks = append(picks, pick)
		}
	}
	sort.Slice(picks, func(i, j int) bool {
		return picks[i].CreatedAt.Before(picks[j].CreatedAt)
	})
	return picks, nil
}
