package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pickemleague/pickem-server/internal/api"
	"github.com/pickemleague/pickem-server/internal/api/apierr"
	"github.com/pickemleague/pickem-server/internal/api/response"
	"github.com/pickemleague/pickem-server/internal/factory"
	"github.com/pickemleague/pickem-server/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:       logger,
		TokenService: app.TokenService,
		AuthService:  app.AuthService,
		GamesService: app.GamesService,
		PicksService: app.PicksService,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns its login token pair
func (ts *testServer) register(t *testing.T, username, password string) response.AuthResponse {
	t.Helper()

	body := map[string]string{"username": username, "password": password}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// loginAdmin seeds an admin account and returns its token pair
func (ts *testServer) loginAdmin(t *testing.T) response.AuthResponse {
	t.Helper()

	_, err := ts.app.AuthService.EnsureAdmin(context.Background(), "commissioner", "hunter2")
	require.NoError(t, err)

	body := map[string]string{"username": "commissioner", "password": "hunter2"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) createGame(t *testing.T, adminToken, home, away string, week int) response.Game {
	t.Helper()

	body := map[string]any{"home_team": home, "away_team": away, "week": week}
	rr := ts.request(http.MethodPost, "/api/v1/admin/games", body, adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	var game response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	return game
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", body, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "member", resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "USERNAME_EXISTS", errorCode(t, rr))
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rr))
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "secret123")

	body := map[string]string{"username": "alice", "password": "wrong"}
	rr := ts.request(http.MethodPost, "/api/v1/auth/login", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rr))
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice", "secret123")

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, auth.AccessToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var user response.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
}

func TestMissingTokenIs401(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rr))
}

func TestMalformedTokenIs403(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, "not-a-token")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rr))
}

func TestExpiredTokenIs403(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice", "secret123")

	ts.app.MockClock.Advance(16 * time.Minute)

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, auth.AccessToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rr))
}

func TestRefresh(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice", "secret123")

	body := map[string]string{"refresh_token": auth.RefreshToken}
	rr := ts.request(http.MethodPost, "/api/v1/auth/refresh", body, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.RefreshResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefreshWithAccessTokenIs403(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice", "secret123")

	body := map[string]string{"refresh_token": auth.AccessToken}
	rr := ts.request(http.MethodPost, "/api/v1/auth/refresh", body, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rr))
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	member := ts.register(t, "alice", "secret123")

	body := map[string]any{"home_team": "Lions", "away_team": "Bears", "week": 1}
	rr := ts.request(http.MethodPost, "/api/v1/admin/games", body, member.AccessToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rr))

	// Nothing was created
	games, err := ts.app.GamesService.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestCreateAndListGames(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	member := ts.register(t, "alice", "secret123")

	ts.createGame(t, admin.AccessToken, "Lions", "Bears", 2)
	ts.createGame(t, admin.AccessToken, "Packers", "Vikings", 1)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, member.AccessToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var list response.GameList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Games, 2)
	assert.Equal(t, 1, list.Games[0].Week)
	assert.Equal(t, 2, list.Games[1].Week)
}

func TestCreateGameValidation(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)

	body := map[string]any{"home_team": "Lions", "away_team": "Lions", "week": 1}
	rr := ts.request(http.MethodPost, "/api/v1/admin/games", body, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_GAME", errorCode(t, rr))
}

func TestSetResult(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	game := ts.createGame(t, admin.AccessToken, "Lions", "Bears", 1)

	body := map[string]string{"winner": "Bears"}
	rr := ts.request(http.MethodPut, "/api/v1/admin/games/"+game.ID+"/result", body, admin.AccessToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var updated response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Bears", updated.Winner)
}

func TestSetResultRejectsOutsideTeam(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	game := ts.createGame(t, admin.AccessToken, "Lions", "Bears", 1)

	body := map[string]string{"winner": "Packers"}
	rr := ts.request(http.MethodPut, "/api/v1/admin/games/"+game.ID+"/result", body, admin.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_CHOICE", errorCode(t, rr))
}

func TestSubmitAndListPicks(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	member := ts.register(t, "alice", "secret123")
	game := ts.createGame(t, admin.AccessToken, "Lions", "Bears", 3)

	body := map[string]string{"game_id": game.ID, "winner": "Lions"}
	rr := ts.request(http.MethodPost, "/api/v1/picks", body, member.AccessToken)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var pick response.Pick
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pick))
	assert.Equal(t, game.ID, pick.GameID)
	assert.Equal(t, 3, pick.Week)

	rr = ts.request(http.MethodGet, "/api/v1/picks/week/3", nil, member.AccessToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var list response.PickList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Picks, 1)
	assert.Equal(t, "Lions", list.Picks[0].Winner)
}

func TestSecondPickSameWeekIs400(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	member := ts.register(t, "alice", "secret123")
	g1 := ts.createGame(t, admin.AccessToken, "Lions", "Bears", 3)
	g2 := ts.createGame(t, admin.AccessToken, "Packers", "Vikings", 3)

	rr := ts.request(http.MethodPost, "/api/v1/picks", map[string]string{"game_id": g1.ID, "winner": "Lions"}, member.AccessToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/picks", map[string]string{"game_id": g2.ID, "winner": "Packers"}, member.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "ALREADY_SUBMITTED", errorCode(t, rr))
}

func TestPickForUnknownGameIs404(t *testing.T) {
	ts := newTestServer(t)
	member := ts.register(t, "alice", "secret123")

	body := map[string]string{"game_id": "missing", "winner": "Lions"}
	rr := ts.request(http.MethodPost, "/api/v1/picks", body, member.AccessToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "GAME_NOT_FOUND", errorCode(t, rr))
}

func TestPickForOutsideTeamIs400(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	member := ts.register(t, "alice", "secret123")
	game := ts.createGame(t, admin.AccessToken, "Lions", "Bears", 3)

	body := map[string]string{"game_id": game.ID, "winner": "Packers"}
	rr := ts.request(http.MethodPost, "/api/v1/picks", body, member.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_CHOICE", errorCode(t, rr))
}

// A member registers, logs in, views the schedule, submits a pick, and a
// second pick the same week is refused
func TestMemberWeekFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	g1 := ts.createGame(t, admin.AccessToken, "Lions", "Bears", 1)
	g2 := ts.createGame(t, admin.AccessToken, "Packers", "Vikings", 1)

	member := ts.register(t, "alice", "secret123")

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, member.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var list response.GameList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Games, 2)

	rr = ts.request(http.MethodPost, "/api/v1/picks", map[string]string{"game_id": g1.ID, "winner": "Lions"}, member.AccessToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/picks", map[string]string{"game_id": g2.ID, "winner": "Vikings"}, member.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "ALREADY_SUBMITTED", errorCode(t, rr))

	// A different week is still open
	g3 := ts.createGame(t, admin.AccessToken, "Chiefs", "Bills", 2)
	rr = ts.request(http.MethodPost, "/api/v1/picks", map[string]string{"game_id": g3.ID, "winner": "Chiefs"}, member.AccessToken)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

// An admin grants admin to a member, who can then schedule games; after
// revocation the same token is refused on admin routes
func TestAdminGrantRevokeFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)
	member := ts.register(t, "alice", "secret123")

	// Grant
	rr := ts.request(http.MethodPut, "/api/v1/admin/users/"+member.User.ID,
		map[string]bool{"is_admin": true}, admin.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated response.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, string(model.RoleAdmin), updated.Role)

	// The member's existing token now passes the live role check
	body := map[string]any{"home_team": "Lions", "away_team": "Bears", "week": 1}
	rr = ts.request(http.MethodPost, "/api/v1/admin/games", body, member.AccessToken)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// Revoke
	rr = ts.request(http.MethodPut, "/api/v1/admin/users/"+member.User.ID,
		map[string]bool{"is_admin": false}, admin.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)

	// The unchanged token is refused immediately, not at expiry
	rr = ts.request(http.MethodPost, "/api/v1/admin/games", body, member.AccessToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rr))
}

func TestCannotDemoteLastAdmin(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.loginAdmin(t)

	rr := ts.request(http.MethodPut, "/api/v1/admin/users/"+admin.User.ID,
		map[string]bool{"is_admin": false}, admin.AccessToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "LAST_ADMIN", errorCode(t, rr))
}

func TestWeekParamValidation(t *testing.T) {
	ts := newTestServer(t)
	member := ts.register(t, "alice", "secret123")

	for _, week := range []string{"zero", "-1", "0"} {
		rr := ts.request(http.MethodGet, fmt.Sprintf("/api/v1/picks/week/%s", week), nil, member.AccessToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	}
}
