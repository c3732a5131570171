package workers

import (
	"context"
	"time"

	"gamifiedFitnessAPI/internal/leaderboard"

	"github.com/sirupsen/logrus"
)

type LeaderboardRefresher interface {
	UpdateLeaderboard(ctx context.Context, t leaderboard.Type, c leaderboard.Category) (*leaderboard.UpdateSummary, error)
}

// Board names one stored leaderboard.
type Board struct {
	Type     leaderboard.Type
	Category leaderboard.Category
}

// DefaultBoards is every periodic board the API serves.
func DefaultBoards() []Board {
	types := []leaderboard.Type{
		leaderboard.TypeDaily,
		leaderboard.TypeWeekly,
		leaderboard.TypeMonthly,
		leaderboard.TypeAllTime,
	}
	categories := []leaderboard.Category{
		leaderboard.CategoryXP,
		leaderboard.CategorySteps,
		leaderboard.CategoryDistance,
		leaderboard.CategoryActiveTime,
		leaderboard.CategoryEcoScore,
		leaderboard.CategoryMissionsCompleted,
	}

	boards := make([]Board, 0, len(types)*len(categories))
	for _, t := range types {
		for _, c := range categories {
			boards = append(boards, Board{Type: t, Category: c})
		}
	}
	return boards
}

// StartLeaderboardWorker rebuilds boards every interval until ctx is done.
// The returned channel is closed once the worker has exited.
func StartLeaderboardWorker(ctx context.Context, r LeaderboardRefresher, interval time.Duration, boards []Board) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				refreshBoards(ctx, r, boards)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

func refreshBoards(ctx context.Context, r LeaderboardRefresher, boards []Board) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	failed := 0
	for _, b := range boards {
		if runCtx.Err() != nil {
			return
		}
		if _, err := r.UpdateLeaderboard(runCtx, b.Type, b.Category); err != nil {
			failed++
			logrus.WithError(err).WithFields(logrus.Fields{
				"type":     b.Type,
				"category": b.Category,
			}).Warn("Leaderboard refresh failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"boards":  len(boards),
		"failed":  failed,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("Leaderboards refreshed")
}
