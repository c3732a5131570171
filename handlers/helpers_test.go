package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	store   store.Store
	clock   *clock.Fixed
	users   *services.UserService
	fitness *services.FitnessService
	mission *services.MissionService
	boards  *services.LeaderboardService
	social  *services.SocialService
}

func setupTestEnv(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st := store.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	c := clock.NewFixed(t0)
	catalog, err := mission.DefaultCatalog()
	require.NoError(t, err)

	return &testEnv{
		store:   st,
		clock:   c,
		users:   services.NewUserService(st, c, nil),
		fitness: services.NewFitnessService(st, c, session.OrderTrust, nil),
		mission: services.NewMissionService(st, c, catalog, nil),
		boards:  services.NewLeaderboardService(st, c, 100),
		social:  services.NewSocialService(st, c),
	}
}

func (e *testEnv) register(t *testing.T, clerkID, username string) *user.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), clerkID, &user.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

// newRequest builds a request as the auth middleware would hand it on. An
// empty clerkID leaves the request unauthenticated.
func newRequest(t *testing.T, method, target, clerkID string, body interface{}, vars map[string]string) *http.Request {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, target, rdr)
	if clerkID != "" {
		r = r.WithContext(middleware.WithClerkID(r.Context(), clerkID))
	}
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
