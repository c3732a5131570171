package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePushProvider struct {
	mu    sync.Mutex
	calls [][]string
	title string
	err   error
}

func (f *fakePushProvider) SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tokens)
	f.title = title
	return f.err
}

func (f *fakePushProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNotificationDispatcher_DeliversToProvider(t *testing.T) {
	d := NewNotificationDispatcher(2)
	t.Cleanup(d.Stop)
	p := &fakePushProvider{}
	d.SetPushProvider(p)

	n := notification.LevelUp("u1", 3, t0)
	require.True(t, d.Dispatch(n, []string{"tok-1", "tok-2"}))

	require.Eventually(t, func() bool { return p.callCount() == 1 }, time.Second, 10*time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, []string{"tok-1", "tok-2"}, p.calls[0])
	assert.Equal(t, n.Title, p.title)
}

func TestNotificationDispatcher_ProviderErrorDoesNotStopWorkers(t *testing.T) {
	d := NewNotificationDispatcher(1)
	t.Cleanup(d.Stop)
	p := &fakePushProvider{err: errors.New("fcm unavailable")}
	d.SetPushProvider(p)

	for i := 0; i < 3; i++ {
		require.True(t, d.Dispatch(notification.StreakBonus("u1", "Week Warrior", 7, t0), []string{"tok"}))
	}
	require.Eventually(t, func() bool { return p.callCount() == 3 }, time.Second, 10*time.Millisecond)
}

func TestNotificationDispatcher_DispatchAfterStop(t *testing.T) {
	d := NewNotificationDispatcher(1)
	d.Stop()
	d.Stop()

	assert.False(t, d.Dispatch(notification.LevelUp("u1", 2, t0), []string{"tok"}))
}

func TestNotificationService_RegisterDeviceAndNotify(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "clerk_a", "alice")

	d := NewNotificationDispatcher(1)
	t.Cleanup(d.Stop)
	p := &fakePushProvider{}
	d.SetPushProvider(p)
	ns := NewNotificationService(env.store, d)

	assert.ErrorIs(t, ns.RegisterDevice(ctx, "clerk_a", &notification.RegisterDeviceRequest{Token: "  "}), ErrInvalidInput)

	// Users without devices are skipped entirely.
	ns.Notify(env.reload(t, "clerk_a"), notification.LevelUp("u1", 2, t0))

	for i := 0; i < 2; i++ {
		require.NoError(t, ns.RegisterDevice(ctx, "clerk_a", &notification.RegisterDeviceRequest{Token: "device-1"}))
	}
	u := env.reload(t, "clerk_a")
	assert.Equal(t, []string{"device-1"}, u.DeviceTokens)

	ns.Notify(u, notification.AchievementUnlocked(u.ID, "Distance Master", 50, t0))
	require.Eventually(t, func() bool { return p.callCount() == 1 }, time.Second, 10*time.Millisecond)
}
