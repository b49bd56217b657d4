package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/pickemleague/pickem-server/internal/model"
)

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))

	storage, err := New(db)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return storage, mock
}

func TestNewEnsuresSchema(t *testing.T) {
	_, mock := newTestStorage(t)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInsertUser(t *testing.T) {
	storage, mock := newTestStorage(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "alice", "member", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs("u1", "alice", "hash", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := storage.InsertUser(context.Background(),
		&model.User{ID: "u1", Username: "alice", Role: model.RoleMember, CreatedAt: now},
		&model.Credential{UserID: "u1", Username: "alice", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("InsertUser() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInsertUserDuplicateUsername(t *testing.T) {
	storage, mock := newTestStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := storage.InsertUser(context.Background(),
		&model.User{ID: "u2", Username: "alice"},
		&model.Credential{UserID: "u2", Username: "alice", PasswordHash: "hash"})
	if err != model.ErrUsernameExists {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	storage, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT id, username, role, created_at FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := storage.GetUser(context.Background(), "missing")
	if err != model.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	storage, mock := newTestStorage(t)

	rows := sqlmock.NewRows([]string{"id", "username", "role", "created_at"}).
		AddRow("u1", "alice", "admin", time.Now())
	mock.ExpectQuery("SELECT id, username, role, created_at FROM users WHERE username = \\$1").
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := storage.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error: %v", err)
	}
	if user.ID != "u1" || user.Role != model.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUpdateUserRole(t *testing.T) {
	storage, mock := newTestStorage(t)

	rows := sqlmock.NewRows([]string{"id", "username", "role", "created_at"}).
		AddRow("u1", "alice", "admin", time.Now())
	mock.ExpectQuery("UPDATE users SET role = \\$2 WHERE id = \\$1").
		WithArgs("u1", "admin").
		WillReturnRows(rows)

	user, err := storage.UpdateUserRole(context.Background(), "u1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateUserRole() error: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestCountAdmins(t *testing.T) {
	storage, mock := newTestStorage(t)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role = \\$1").
		WithArgs("admin").
		WillReturnRows(rows)

	count, err := storage.CountAdmins(context.Background())
	if err != nil {
		t.Fatalf("CountAdmins() error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 admins, got %d", count)
	}
}

func TestInsertPickWeekScopeBlocked(t *testing.T) {
	storage, mock := newTestStorage(t)

	// Race loser hits the (user_id, week) guard primary key, even when
	// the competing pick is for a different game
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pick_week_guards").
		WithArgs("u1", 1).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	pick := &model.Pick{ID: "p1", UserID: "u1", GameID: "g1", Week: 1, Winner: "Packers", CreatedAt: time.Now()}
	err := storage.InsertPick(context.Background(), pick, model.LockScopeWeek)
	if err != model.ErrPickExists {
		t.Fatalf("expected ErrPickExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInsertPickWeekScopeSucceeds(t *testing.T) {
	storage, mock := newTestStorage(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pick_week_guards").
		WithArgs("u1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO picks").
		WithArgs("p1", "u1", "g1", 1, "Packers", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	pick := &model.Pick{ID: "p1", UserID: "u1", GameID: "g1", Week: 1, Winner: "Packers", CreatedAt: now}
	if err := storage.InsertPick(context.Background(), pick, model.LockScopeWeek); err != nil {
		t.Fatalf("InsertPick() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInsertPickGameScopeUniqueViolation(t *testing.T) {
	storage, mock := newTestStorage(t)

	// Race loser hits the (user_id, game_id) unique index
	mock.ExpectExec("INSERT INTO picks").
		WillReturnError(&pq.Error{Code: "23505"})

	pick := &model.Pick{ID: "p1", UserID: "u1", GameID: "g1", Week: 1, Winner: "Packers", CreatedAt: time.Now()}
	err := storage.InsertPick(context.Background(), pick, model.LockScopeGame)
	if err != model.ErrPickExists {
		t.Fatalf("expected ErrPickExists, got %v", err)
	}
}

func TestListPicksForWeek(t *testing.T) {
	storage, mock := newTestStorage(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "game_id", "week", "winner", "created_at"}).
		AddRow("p1", "u1", "g1", 1, "Packers", time.Now())
	mock.ExpectQuery("SELECT id, user_id, game_id, week, winner, created_at FROM picks").
		WithArgs("u1", 1).
		WillReturnRows(rows)

	picks, err := storage.ListPicksForWeek(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("ListPicksForWeek() error: %v", err)
	}
	if len(picks) != 1 || picks[0].Winner != "Packers" {
		t.Fatalf("unexpected picks: %+v", picks)
	}
}
