package handlers

import (
	"net/http"
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Register(t *testing.T) {
	env := setupTestEnv(t)
	h := NewUserHandler(env.users)

	body := user.CreateUserRequest{Username: "alice", Email: "alice@example.com"}

	rec := serve(h.Register, newRequest(t, http.MethodPost, "/api/v1/user", "", body, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h.Register, newRequest(t, http.MethodPost, "/api/v1/user", "clerk_a", body, nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[user.User](t, rec)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, 1, created.GameStats.Level)

	rec = serve(h.Register, newRequest(t, http.MethodPost, "/api/v1/user", "clerk_a", body, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.Register, newRequest(t, http.MethodPost, "/api/v1/user", "clerk_b", user.CreateUserRequest{}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_ProfileRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	h := NewUserHandler(env.users)

	rec := serve(h.GetProfile, newRequest(t, http.MethodGet, "/api/v1/user", "clerk_a", nil, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	u := env.register(t, "clerk_a", "alice")

	name := "alice_runs"
	rec = serve(h.UpdateProfile, newRequest(t, http.MethodPut, "/api/v1/user/profile", "clerk_a",
		user.UpdateProfileRequest{Username: &name}, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice_runs", decode[user.User](t, rec).Username)

	rec = serve(h.GetPublicProfile, newRequest(t, http.MethodGet, "/api/v1/user/public/"+u.ID, "clerk_b", nil,
		map[string]string{"id": u.ID}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h.GetPublicProfile, newRequest(t, http.MethodGet, "/api/v1/user/public/nope", "clerk_b", nil,
		map[string]string{"id": "nope"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_DailyCheckinOncePerDay(t *testing.T) {
	env := setupTestEnv(t)
	h := NewUserHandler(env.users)
	env.register(t, "clerk_a", "alice")

	rec := serve(h.DailyCheckin, newRequest(t, http.MethodPost, "/api/v1/game/daily-checkin", "clerk_a", nil, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h.DailyCheckin, newRequest(t, http.MethodPost, "/api/v1/game/daily-checkin", "clerk_a", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.clock.Advance(24 * time.Hour)
	rec = serve(h.DailyCheckin, newRequest(t, http.MethodPost, "/api/v1/game/daily-checkin", "clerk_a", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h.GetGameProfile, newRequest(t, http.MethodGet, "/api/v1/game/profile", "clerk_a", nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[user.GameProfileResponse](t, rec)
	assert.Equal(t, 55, profile.XP)
}
