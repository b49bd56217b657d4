package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pickemleague/pickem-server/internal/dependencies/mocks"
	"github.com/pickemleague/pickem-server/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	user    *model.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, s.clock)
	s.user = &model.User{ID: "user-1", Username: "alice", Role: model.RoleMember}
}

// Access token tests

func (s *ServiceSuite) TestAccessTokenRoundTrip() {
	tokenStr, err := s.service.IssueAccessToken(s.user)
	s.Require().NoError(err)
	s.NotEmpty(tokenStr)

	claims, err := s.service.VerifyAccess(tokenStr)
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), claims.UserID())
	s.Equal(string(model.RoleMember), claims.Role)
}

func (s *ServiceSuite) TestAccessTokenCarriesRole() {
	admin := &model.User{ID: "user-2", Username: "root", Role: model.RoleAdmin}

	tokenStr, err := s.service.IssueAccessToken(admin)
	s.Require().NoError(err)

	claims, err := s.service.VerifyAccess(tokenStr)
	s.Require().NoError(err)
	s.Equal(string(model.RoleAdmin), claims.Role)
}

func (s *ServiceSuite) TestAccessTokenValidUntilExpiry() {
	tokenStr, _ := s.service.IssueAccessToken(s.user)

	// Just before expiry the token still verifies
	s.clock.Advance(15*time.Minute - time.Second)
	_, err := s.service.VerifyAccess(tokenStr)
	s.NoError(err)
}

func (s *ServiceSuite) TestAccessTokenFailsAfterExpiry() {
	tokenStr, _ := s.service.IssueAccessToken(s.user)

	s.clock.Advance(15*time.Minute + time.Second)
	_, err := s.service.VerifyAccess(tokenStr)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestAccessTokenRejectedByRefreshVerifier() {
	tokenStr, _ := s.service.IssueAccessToken(s.user)

	_, err := s.service.VerifyRefresh(tokenStr)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyAccessRejectsMalformedToken() {
	_, err := s.service.VerifyAccess("not.a.token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyAccessRejectsWrongSecret() {
	other := New(Config{
		AccessSecret:  []byte("different-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}, s.clock)
	tokenStr, _ := other.IssueAccessToken(s.user)

	_, err := s.service.VerifyAccess(tokenStr)
	s.ErrorIs(err, ErrInvalidToken)
}

// Refresh token tests

func (s *ServiceSuite) TestRefreshTokenRoundTrip() {
	tokenStr, err := s.service.IssueRefreshToken(s.user)
	s.Require().NoError(err)

	claims, err := s.service.VerifyRefresh(tokenStr)
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), claims.UserID())
}

func (s *ServiceSuite) TestRefreshTokenCarriesNoRole() {
	admin := &model.User{ID: "user-2", Username: "root", Role: model.RoleAdmin}

	tokenStr, _ := s.service.IssueRefreshToken(admin)
	claims, err := s.service.VerifyRefresh(tokenStr)
	s.Require().NoError(err)
	s.Empty(claims.Role)
}

func (s *ServiceSuite) TestRefreshTokenOutlivesAccessToken() {
	access, _ := s.service.IssueAccessToken(s.user)
	refresh, _ := s.service.IssueRefreshToken(s.user)

	s.clock.Advance(24 * time.Hour)

	_, err := s.service.VerifyAccess(access)
	s.ErrorIs(err, ErrInvalidToken)

	_, err = s.service.VerifyRefresh(refresh)
	s.NoError(err)
}

func (s *ServiceSuite) TestRefreshTokenFailsAfterSevenDays() {
	refresh, _ := s.service.IssueRefreshToken(s.user)

	s.clock.Advance(7*24*time.Hour + time.Second)
	_, err := s.service.VerifyRefresh(refresh)
	s.ErrorIs(err, ErrInvalidToken)
}
