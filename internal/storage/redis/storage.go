package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) InsertUser(ctx context.Context, user *model.User, cred *model.Credential) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return err
	}
	credData, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	// Claim the username first; SETNX makes registration atomic against
	// a concurrent insert of the same username.
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), string(user.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameExists
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), userData, 0)
	pipe.Set(ctx, credentialKey(user.ID), credData, 0)
	if user.Role == model.RoleAdmin {
		pipe.SAdd(ctx, adminsKey(), string(user.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	userIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(userIDStr))
}

func (s *Storage) GetCredentialByUsername(ctx context.Context, username string) (*model.Credential, error) {
	userIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	data, err := s.client.Get(ctx, credentialKey(model.UserID(userIDStr))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var cred model.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *Storage) UpdateUserRole(ctx context.Context, id model.UserID, role model.Role) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *user
	updated.Role = role

	data, err := json.Marshal(&updated)
	if err != nil {
		return nil, err
	}

	// Keep the admin index in sync with the role in one pipeline
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(id), data, 0)
	if role == model.RoleAdmin {
		pipe.SAdd(ctx, adminsKey(), string(id))
	} else {
		pipe.SRem(ctx, adminsKey(), string(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	count, err := s.client.SCard(ctx, adminsKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	pipe.SAdd(ctx, gamesIndexKey(), gameKey(game.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	keys, err := s.client.SMembers(ctx, gamesIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Game{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(val.(string)), &game); err != nil {
			continue // Skip invalid data
		}
		games = append(games, &game)
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
	data, err := json.Marshal(pick)
	if err != nil {
		return err
	}

	var guardKey string
	switch scope {
	case model.LockScopeWeek:
		guardKey = weekGuardKey(pick.UserID, pick.Week)
	default:
		guardKey = gameGuardKey(pick.UserID, pick.GameID)
	}

	// SETNX on the guard key is the atomic conditional insert: exactly one
	// of two concurrent submissions can claim it.
	claimed, err := s.client.SetNX(ctx, guardKey, string(pick.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrPickExists
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, pickKey(pick.ID), data, 0)
	pipe.SAdd(ctx, picksForWeekIndexKey(pick.UserID, pick.Week), pickKey(pick.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPicksForWeek(ctx context.Context, userID model.UserID, week int) ([]*model.Pick, error) {
	keys, err := s.client.SMembers(ctx, picksForWeekIndexKey(userID, week)).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Pick{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	picks := make([]*model.Pick, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var pick model.Pick
		if err := json.Unmarshal([]byte(val.(string)), &pick); err != nil {
			continue // Skip invalid data
		}
		picks = append(picks, &pick)
	}

	sort.Slice(picks, func(i, j int) bool {
		return picks[i].CreatedAt.Before(picks[j].CreatedAt)
	})

	return picks, nil
}
