package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls []Board
	fail  leaderboard.Category
}

func (f *fakeRefresher) UpdateLeaderboard(ctx context.Context, t leaderboard.Type, c leaderboard.Category) (*leaderboard.UpdateSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Board{Type: t, Category: c})
	if c == f.fail {
		return nil, errors.New("store unavailable")
	}
	return &leaderboard.UpdateSummary{Type: t, Category: c}, nil
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDefaultBoards(t *testing.T) {
	boards := DefaultBoards()
	assert.Len(t, boards, 24)
	assert.Contains(t, boards, Board{Type: leaderboard.TypeWeekly, Category: leaderboard.CategoryXP})
	assert.NotContains(t, boards, Board{Type: leaderboard.TypeMissionSpecific, Category: leaderboard.CategoryXP})
}

func TestLeaderboardWorker_RefreshesUntilCancelled(t *testing.T) {
	r := &fakeRefresher{fail: leaderboard.CategorySteps}
	boards := []Board{
		{Type: leaderboard.TypeDaily, Category: leaderboard.CategorySteps},
		{Type: leaderboard.TypeDaily, Category: leaderboard.CategoryXP},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := StartLeaderboardWorker(ctx, r, 10*time.Millisecond, boards)

	// A failing board does not stop the others or later ticks.
	require.Eventually(t, func() bool { return r.count() >= 4 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	stopped := r.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, r.count())
}
