package games

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pickemleague/pickem-server/internal/dependencies/clock"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/storage"
)

// Service manages the game schedule and results
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a games service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger,
	}
}

// Create adds a game to the schedule
func (s *Service) Create(ctx context.Context, homeTeam, awayTeam string, week int) (*model.Game, error) {
	homeTeam = strings.TrimSpace(homeTeam)
	awayTeam = strings.TrimSpace(awayTeam)

	if homeTeam == "" || awayTeam == "" {
		return nil, fmt.Errorf("%w: both teams are required", model.ErrInvalidGame)
	}
	if homeTeam == awayTeam {
		return nil, fmt.Errorf("%w: a team cannot play itself", model.ErrInvalidGame)
	}
	if week < 1 {
		return nil, fmt.Errorf("%w: week must be positive, got %d", model.ErrInvalidGame, week)
	}

	now := s.clock.Now()
	game := &model.Game{
		ID:        model.GameID("g_" + uuid.NewString()),
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		Week:      week,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	s.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.Int("week", week),
	)

	return game, nil
}

// SetResult records which team won a game. Re-setting a result overwrites
// the previous one; recorded picks are never touched.
func (s *Service) SetResult(ctx context.Context, id model.GameID, winner string) (*model.Game, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if !game.HasTeam(winner) {
		return nil, fmt.Errorf("%w: %q is not playing in game %s", model.ErrInvalidChoice, winner, id)
	}

	// Work on a copy; the memory backend hands out its stored pointer and
	// a concurrent read must not see a half-applied result
	updated := *game
	updated.Winner = winner
	updated.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveGame(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("result recorded",
		slog.String("game_id", string(id)),
		slog.String("winner", winner),
	)

	return &updated, nil
}

// Get returns a game by id
func (s *Service) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// List returns the full schedule ordered by week
func (s *Service) List(ctx context.Context) ([]*model.Game, error) {
	return s.storage.ListGames(ctx)
}
