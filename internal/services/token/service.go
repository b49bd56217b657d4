package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pickemleague/pickem-server/internal/dependencies/clock"
	"github.com/pickemleague/pickem-server/internal/model"
)

// ErrInvalidToken is returned for every verification failure. Malformed,
// forged, and expired tokens are deliberately indistinguishable to the
// caller so the error reveals nothing about which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by contest tokens. Access tokens
// carry the subject's role; refresh tokens carry only the subject, so a
// role change can never be replayed out of a long-lived token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a typed user id
func (c *Claims) UserID() model.UserID {
	return model.UserID(c.Subject)
}

// Config holds signing secrets and token lifetimes. The two secrets must
// be independent: an access token must never verify against the refresh
// secret or vice versa.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// DefaultConfig returns the standard token lifetimes
func DefaultConfig() Config {
	return Config{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// Service issues and verifies signed tokens. Tokens are stateless: the
// service keeps no record of what it has issued, validity is purely
// signature plus expiry.
type Service struct {
	cfg   Config
	clock clock.Clock
}

// New creates a token service
func New(cfg Config, clk clock.Clock) *Service {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultConfig().AccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultConfig().RefreshTTL
	}
	return &Service{cfg: cfg, clock: clk}
}

// IssueAccessToken mints a short-lived access token embedding the user's
// id and role
func (s *Service) IssueAccessToken(user *model.User) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.AccessSecret)
}

// IssueRefreshToken mints a long-lived refresh token embedding only the
// user's id
func (s *Service) IssueRefreshToken(user *model.User) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.RefreshSecret)
}

// VerifyAccess validates an access token and returns its claims
func (s *Service) VerifyAccess(tokenStr string) (*Claims, error) {
	return s.verify(tokenStr, s.cfg.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims
func (s *Service) VerifyRefresh(tokenStr string) (*Claims, error) {
	return s.verify(tokenStr, s.cfg.RefreshSecret)
}

func (s *Service) verify(tokenStr string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
