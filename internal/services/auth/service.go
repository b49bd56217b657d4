package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pickemleague/pickem-server/internal/dependencies/clock"
	"github.com/pickemleague/pickem-server/internal/model"
	"github.com/pickemleague/pickem-server/internal/services/token"
	"github.com/pickemleague/pickem-server/internal/storage"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords, so login failures never confirm whether an account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenPair is the result of a successful login
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// Service handles registration, login, token refresh, and role changes
type Service struct {
	storage storage.Storage
	tokens  *token.Service
	clock   clock.Clock
	logger  *slog.Logger

	// Serializes role changes so two concurrent demotions cannot both
	// pass the last-admin count
	roleMu sync.Mutex
}

// New creates a new auth service
func New(storage storage.Storage, tokens *token.Service, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		tokens:  tokens,
		clock:   clk,
		logger:  logger,
	}
}

// Register creates a user account. Username uniqueness is enforced by the
// storage layer's atomic insert, not by a read-then-write here.
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	user := &model.User{
		ID:        model.UserID("u_" + uuid.NewString()),
		Username:  username,
		Role:      model.RoleMember,
		CreatedAt: now,
	}
	cred := &model.Credential{
		UserID:       user.ID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.InsertUser(ctx, user, cred); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", string(user.ID)),
		slog.String("username", username),
	)

	return user, nil
}

// Login authenticates a user and issues an access/refresh token pair
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	cred, err := s.storage.GetCredentialByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUser(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", string(user.ID)))

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

// Refresh verifies a refresh token and mints a new access token. The role
// embedded in the new token is the user's CURRENT stored role, re-fetched
// here, never a value carried over from when the refresh token was issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.storage.GetUser(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", token.ErrInvalidToken
		}
		return "", err
	}

	return s.tokens.IssueAccessToken(user)
}

// EnsureAdmin makes sure an admin account with the given username exists,
// registering it first if necessary. Used to seed the initial admin at
// startup. An existing account keeps its password; only the role is
// raised.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		user, err = s.Register(ctx, username, password)
	}
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		return user, nil
	}

	return s.storage.UpdateUserRole(ctx, user.ID, model.RoleAdmin)
}

// GetUser returns the user for an id
func (s *Service) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// SetRole grants or revokes a user's admin privilege. Demoting the last
// remaining admin is refused: a contest with zero admins can never score
// games or recover.
func (s *Service) SetRole(ctx context.Context, targetID model.UserID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, model.ErrInvalidRole
	}

	s.roleMu.Lock()
	defer s.roleMu.Unlock()

	target, err := s.storage.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if target.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := s.storage.CountAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, model.ErrLastAdmin
		}
	}

	updated, err := s.storage.UpdateUserRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("role updated",
		slog.String("user_id", string(targetID)),
		slog.String("role", string(role)),
	)

	return updated, nil
}
