package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamifiedFitnessAPI/handlers"
	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/config"
	"gamifiedFitnessAPI/internal/geo"
	"gamifiedFitnessAPI/internal/leaderboard"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"
)

const devSecret = "test-secret-key-for-testing-only"

var t0 = time.Date(2025, 6, 4, 7, 30, 0, 0, time.UTC)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	clock   *clock.Fixed
}

func setupAPI(t *testing.T) *apiClient {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st := store.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	clk := clock.NewFixed(t0)
	catalog, err := mission.DefaultCatalog()
	require.NoError(t, err)

	dispatcher := services.NewNotificationDispatcher(1)
	t.Cleanup(dispatcher.Stop)

	notificationService := services.NewNotificationService(st, dispatcher)
	userService := services.NewUserService(st, clk, notificationService)
	webhookHandler, err := handlers.NewWebhookHandler(userService, "")
	require.NoError(t, err)

	missionService := services.NewMissionService(st, clk, catalog, notificationService)
	created, err := missionService.InitDefaults(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(catalog.Missions), created)

	cfg := &config.Config{AuthMode: middleware.AuthModeDev, DevJWTSecret: devSecret}
	router := newRouter(cfg, st, routeHandlers{
		user:           handlers.NewUserHandler(userService),
		fitness:        handlers.NewFitnessHandler(services.NewFitnessService(st, clk, session.OrderTrust, notificationService)),
		mission:        handlers.NewMissionHandler(missionService),
		leaderboard:    handlers.NewLeaderboardHandler(services.NewLeaderboardService(st, clk, 100)),
		social:         handlers.NewSocialHandler(services.NewSocialService(st, clk)),
		sustainability: handlers.NewSustainabilityHandler(services.NewSustainabilityService(st, clk, notificationService)),
		notification:   handlers.NewNotificationHandler(notificationService),
		webhook:        webhookHandler,
	}, middleware.NewRateLimiter(1000, 1000))

	return &apiClient{t: t, handler: router, clock: clk}
}

// mockToken signs a dev-mode token whose subject is the Clerk user ID.
func mockToken(t *testing.T, clerkID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"sid": "sess_test123",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(devSecret))
	require.NoError(t, err)
	return token
}

func (c *apiClient) do(method, path, clerkID string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if clerkID != "" {
		req.Header.Set("Authorization", "Bearer "+mockToken(c.t, clerkID))
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func metersNorth(d float64) float64 {
	return d / (geo.EarthRadiusMeters * math.Pi / 180)
}

func TestHealthAndLockedOperatorEndpoints(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/debug/pprof/", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/webhooks/clerk", "", map[string]string{"type": "user.created"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/user", "user_unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestFullWorkoutFlow drives registration, a recorded walk, mission progress
// and the resulting rankings through the public router.
func TestFullWorkoutFlow(t *testing.T) {
	api := setupAPI(t)
	rec := api.do(http.MethodPost, "/api/v1/user", "user_alice", user.CreateUserRequest{Username: "alice", Email: "alice@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, "/api/v1/user", "user_bob", user.CreateUserRequest{Username: "bob", Email: "bob@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/missions/available", "user_alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	available := decodeBody[[]mission.Mission](t, rec)
	require.NotEmpty(t, available)
	var firstSteps *mission.Mission
	for i := range available {
		if available[i].Name == "First Steps" {
			firstSteps = &available[i]
		}
	}
	require.NotNil(t, firstSteps)

	rec = api.do(http.MethodPost, "/api/v1/missions/"+firstSteps.ID+"/join", "user_alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/fitness/start", "user_alice", session.StartSessionRequest{Type: session.TypeWalking})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decodeBody[session.Session](t, rec)

	waypoints := []session.Waypoint{
		{Lat: 0, Lng: 0, Timestamp: t0},
		{Lat: metersNorth(750), Lng: 0, Timestamp: t0.Add(8 * time.Minute)},
		{Lat: metersNorth(1500), Lng: 0, Timestamp: t0.Add(16 * time.Minute)},
	}
	rec = api.do(http.MethodPost, "/api/v1/fitness/sessions/"+sess.ID+"/waypoints", "user_alice",
		session.AddWaypointsRequest{Waypoints: waypoints})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Bob cannot see Alice's session.
	rec = api.do(http.MethodGet, "/api/v1/fitness/sessions/"+sess.ID, "user_bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	api.clock.Advance(20 * time.Minute)
	rec = api.do(http.MethodPost, "/api/v1/fitness/sessions/"+sess.ID+"/stop", "user_alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stopped := decodeBody[session.StopSessionResponse](t, rec)
	assert.Equal(t, session.StatusCompleted, stopped.Session.Status)
	assert.InDelta(t, 1500, stopped.Session.Stats.Distance, 0.5)
	assert.Greater(t, stopped.Rewards.XP, 0)
	require.Len(t, stopped.MissionUpdates, 1)
	assert.Equal(t, firstSteps.ID, stopped.MissionUpdates[0].MissionID)
	assert.True(t, stopped.MissionUpdates[0].Completed)

	// Both mission leaderboard routes serve the same ranking.
	rec = api.do(http.MethodGet, "/api/v1/missions/"+firstSteps.ID+"/leaderboard", "user_bob", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	byMission := decodeBody[mission.LeaderboardResponse](t, rec)
	require.Len(t, byMission.Leaderboard, 1)
	assert.Equal(t, mission.ParticipantCompleted, byMission.Leaderboard[0].Status)

	rec = api.do(http.MethodGet, "/api/v1/leaderboard/mission/"+firstSteps.ID, "user_bob", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, byMission, decodeBody[mission.LeaderboardResponse](t, rec))

	rec = api.do(http.MethodGet, "/api/v1/leaderboard/mission/missing", "user_bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/game/profile", "user_alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[user.GameProfileResponse](t, rec)
	assert.GreaterOrEqual(t, profile.XP, stopped.Rewards.XP+firstSteps.Rewards.XP)
	assert.InDelta(t, 1500, profile.TotalDistance, 0.5)

	rec = api.do(http.MethodGet, "/api/v1/game/dashboard", "user_alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody[user.DashboardResponse](t, rec).User.Username)

	rec = api.do(http.MethodGet, "/api/v1/leaderboard?type=all_time&category=distance", "user_bob", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeBody[leaderboard.View](t, rec)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, "alice", view.Entries[0].Username)
	assert.Equal(t, 1, view.Entries[0].Rank)
	require.NotNil(t, view.UserPosition)
	assert.Equal(t, 2, view.UserPosition.Rank)

	rec = api.do(http.MethodGet, "/api/v1/fitness/sessions?status=completed", "user_alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), sess.ID)
}
