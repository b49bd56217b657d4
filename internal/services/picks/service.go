package picks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pickemleague/pickem-server/internal/dependencies/clock"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/storage"
)

// Service records contest picks. One pick per user per week (or per game,
// depending on the configured lock scope); once recorded a pick is final.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	scope   model.LockScope
}

// New creates a picks service. An invalid or empty scope falls back to
// the week scope.
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger, scope model.LockScope) *Service {
	if !scope.Valid() {
		scope = model.LockScopeWeek
	}
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger,
		scope:   scope,
	}
}

// Submit records a user's pick for a game. The winner must be one of the
// game's two teams. Duplicate submissions within the lock scope fail with
// model.ErrAlreadySubmitted regardless of whether the earlier pick was
// spotted before the insert or detected by the storage layer's atomic
// guard, so concurrent racers and sequential retries see the same error.
func (s *Service) Submit(ctx context.Context, userID model.UserID, gameID model.GameID, winner string) (*model.Pick, error) {
	game, err := s.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	// A locked scope fails before the winner is even looked at, so a
	// resubmission with a bad choice still reports the pick that already
	// counted. The read is advisory; the insert below is the real guard.
	locked, err := s.scopeLocked(ctx, userID, gameID, game.Week)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, model.ErrAlreadySubmitted
	}

	if !game.HasTeam(winner) {
		return nil, fmt.Errorf("%w: %q is not playing in game %s", model.ErrInvalidChoice, winner, gameID)
	}

	pick := &model.Pick{
		ID:        model.PickID("p_" + uuid.NewString()),
		UserID:    userID,
		GameID:    gameID,
		Week:      game.Week,
		Winner:    winner,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.InsertPick(ctx, pick, s.scope); err != nil {
		if errors.Is(err, model.ErrPickExists) {
			return nil, model.ErrAlreadySubmitted
		}
		return nil, err
	}

	s.logger.Info("pick recorded",
		slog.String("user_id", string(userID)),
		slog.String("game_id", string(gameID)),
		slog.Int("week", game.Week),
		slog.String("winner", winner),
	)

	return pick, nil
}

func (s *Service) scopeLocked(ctx context.Context, userID model.UserID, gameID model.GameID, week int) (bool, error) {
	existing, err := s.storage.ListPicksForWeek(ctx, userID, week)
	if err != nil {
		return false, err
	}
	if s.scope == model.LockScopeWeek {
		return len(existing) > 0, nil
	}
	for _, p := range existing {
		if p.GameID == gameID {
			return true, nil
		}
	}
	return false, nil
}

// ListForWeek returns a user's picks for a week, oldest first
func (s *Service) ListForWeek(ctx context.Context, userID model.UserID, week int) ([]*model.Pick, error) {
	return s.storage.ListPicksForWeek(ctx, userID, week)
}
