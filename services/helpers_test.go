package services

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/geo"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/notification"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []notification.Kind
}

func (r *recordingNotifier) Notify(u *user.User, n *notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, n.Kind)
}

func (r *recordingNotifier) count(kind notification.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

type testEnv struct {
	store    store.Store
	clock    *clock.Fixed
	notifier *recordingNotifier
	users    *UserService
}

func setupTestEnv(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st := store.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	c := clock.NewFixed(t0)
	n := &recordingNotifier{}

	return &testEnv{
		store:    st,
		clock:    c,
		notifier: n,
		users:    NewUserService(st, c, n),
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

func (e *testEnv) reload(t *testing.T, clerkID string) *user.User {
	t.Helper()
	u, err := e.store.GetUserByClerkID(context.Background(), clerkID)
	require.NoError(t, err)
	return u
}

// latForMeters returns the latitude offset that spans d meters along a meridian.
func latForMeters(d float64) float64 {
	return d / (geo.EarthRadiusMeters * math.Pi / 180)
}

func defaultCatalog(t *testing.T) *mission.Catalog {
	t.Helper()
	c, err := mission.DefaultCatalog()
	require.NoError(t, err)
	return c
}

// mutate loads the user, applies fn and saves it back.
func (e *testEnv) mutate(t *testing.T, clerkID string, fn func(u *user.User)) *user.User {
	t.Helper()
	u := e.reload(t, clerkID)
	fn(u)
	require.NoError(t, e.store.SaveUser(context.Background(), u))
	return u
}

func withXP(xp int) func(u *user.User) {
	return func(u *user.User) { u.GameStats.XP = xp }
}
