package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// The pick-submission invariant is enforced by the schema itself: a
// composite unique index on (user_id, game_id) plus a guard row in
// pick_week_guards with a (user_id, week) primary key for week-scope
// locking, so a lost race always surfaces as model.ErrPickExists
// rather than a silent duplicate.
type Storage struct {
	db *sql.DB
}

// New creates a Postgres storage instance and ensures the schema exists
func New(db *sql.DB) (*Storage, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &Storage{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open connects to Postgres with the given DSN and ensures the schema
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db)
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL DEFAULT 'member',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS credentials (
	user_id TEXT PRIMARY KEY REFERENCES users(id),
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	week INT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS picks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	game_id TEXT NOT NULL REFERENCES games(id),
	week INT NOT NULL,
	winner TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, game_id)
);
CREATE TABLE IF NOT EXISTS pick_week_guards (
	user_id TEXT NOT NULL REFERENCES users(id),
	week INT NOT NULL,
	PRIMARY KEY (user_id, week)
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// User operations

func (s *Storage) InsertUser(ctx context.Context, user *model.User, cred *model.Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertUser = `INSERT INTO users (id, username, role, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insertUser, string(user.ID), user.Username, string(user.Role), user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	const insertCred = `INSERT INTO credentials (user_id, username, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insertCred, string(cred.UserID), cred.Username, cred.PasswordHash, cred.CreatedAt, cred.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	const q = `SELECT id, username, role, created_at FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, q, string(id)))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, role, created_at FROM users WHERE username = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, q, username))
}

func (s *Storage) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var id, role string
	if err := row.Scan(&id, &u.Username, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.ID = model.UserID(id)
	u.Role = model.Role(role)
	return &u, nil
}

func (s *Storage) GetCredentialByUsername(ctx context.Context, username string) (*model.Credential, error) {
	const q = `SELECT user_id, username, password_hash, created_at, updated_at FROM credentials WHERE username = $1`
	var c model.Credential
	var userID string
	err := s.db.QueryRowContext(ctx, q, username).Scan(&userID, &c.Username, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}
	c.UserID = model.UserID(userID)
	return &c, nil
}

func (s *Storage) UpdateUserRole(ctx context.Context, id model.UserID, role model.Role) (*model.User, error) {
	const q = `UPDATE users SET role = $2 WHERE id = $1 RETURNING id, username, role, created_at`
	return s.scanUser(s.db.QueryRowContext(ctx, q, string(id), string(role)))
}

func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE role = $1`
	var count int
	if err := s.db.QueryRowContext(ctx, q, string(model.RoleAdmin)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	const q = `
INSERT INTO games (id, home_team, away_team, week, winner, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET home_team = EXCLUDED.home_team,
	away_team = EXCLUDED.away_team,
	week = EXCLUDED.week,
	winner = EXCLUDED.winner,
	updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, q,
		string(game.ID), game.HomeTeam, game.AwayTeam, game.Week, game.Winner, game.CreatedAt, game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	const q = `SELECT id, home_team, away_team, week, winner, created_at, updated_at FROM games WHERE id = $1`
	var g model.Game
	var gid string
	err := s.db.QueryRowContext(ctx, q, string(id)).Scan(&gid, &g.HomeTeam, &g.AwayTeam, &g.Week, &g.Winner, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("query game: %w", err)
	}
	g.ID = model.GameID(gid)
	return &g, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	const q = `SELECT id, home_team, away_team, week, winner, created_at, updated_at FROM games ORDER BY week, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer func() { _ = rows.Close() }()

	games := make([]*model.Game, 0)
	for rows.Next() {
		var g model.Game
		var gid string
		if err := rows.Scan(&gid, &g.HomeTeam, &g.AwayTeam, &g.Week, &g.Winner, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.ID = model.GameID(gid)
		games = append(games, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Pick operations

func (s *Storage) InsertPick(ctx context.Context, pick *model.Pick, scope model.LockScope) error {
	if scope == model.LockScopeWeek {
		// Guard row and pick land in one transaction. The (user_id, week)
		// primary key on the guard table makes the second of two concurrent
		// same-week inserts fail with 23505 even for different games, which
		// a NOT EXISTS check against a READ COMMITTED snapshot would miss.
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin insert pick: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		const insertGuard = `INSERT INTO pick_week_guards (user_id, week) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, insertGuard, string(pick.UserID), pick.Week); err != nil {
			if isUniqueViolation(err) {
				return model.ErrPickExists
			}
			return fmt.Errorf("insert pick guard: %w", err)
		}

		const insertPick = `INSERT INTO picks (id, user_id, game_id, week, winner, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := tx.ExecContext(ctx, insertPick,
			string(pick.ID), string(pick.UserID), string(pick.GameID), pick.Week, pick.Winner, pick.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return model.ErrPickExists
			}
			return fmt.Errorf("insert pick: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit insert pick: %w", err)
		}
		return nil
	}

	const q = `INSERT INTO picks (id, user_id, game_id, week, winner, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, q,
		string(pick.ID), string(pick.UserID), string(pick.GameID), pick.Week, pick.Winner, pick.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPickExists
		}
		return fmt.Errorf("insert pick: %w", err)
	}
	return nil
}

func (s *Storage) ListPicksForWeek(ctx context.Context, userID model.UserID, week int) ([]*model.Pick, error) {
	const q = `SELECT id, user_id, game_id, week, winner, created_at FROM picks WHERE user_id = $1 AND week = $2 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, q, string(userID), week)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	picks := make([]*model.Pick, 0)
	for rows.Next() {
		var p model.Pick
		var id, uid, gid string
		if err := rows.Scan(&id, &uid, &gid, &p.Week, &p.Winner, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		p.ID = model.PickID(id)
		p.UserID = model.UserID(uid)
		p.GameID = model.GameID(gid)
		picks = append(picks, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	return picks, nil
}
