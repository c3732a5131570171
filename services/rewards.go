package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/metrics"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/notification"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"
)

// rewarder applies payouts to a user and emits the side effects: level-up
// counters and pushes.
type rewarder struct {
	clock    clock.Clock
	notifier Notifier
}

func (r *rewarder) grant(u *user.User, xp, coins int) user.XPResult {
	res := u.AddXP(xp)
	u.AddCoins(coins)
	r.afterXP(u, res)
	return res
}

func (r *rewarder) afterXP(u *user.User, res user.XPResult) {
	if !res.LeveledUp {
		return
	}
	metrics.LevelUps.Inc()
	notify(r.notifier, u, notification.LevelUp(u.ID, res.NewLevel, r.clock.Now()))
}

// missionCompleted pays out m's rewards to u. Callers invoke it once, on the
// transition of u's participant to completed.
func (r *rewarder) missionCompleted(u *user.User, m *mission.Mission, source string) mission.CompletionRewards {
	res := r.grant(u, m.Rewards.XP, m.Rewards.Coins)
	out := mission.CompletionRewards{
		XP:       m.Rewards.XP,
		Coins:    m.Rewards.Coins,
		LevelUp:  res.LeveledUp,
		NewLevel: res.NewLevel,
	}

	if b := m.Rewards.Badge; b != nil {
		badge := user.Badge{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			Icon:        b.Icon,
			UnlockedAt:  r.clock.Now(),
		}
		if u.AddBadge(badge) {
			out.Badge = &badge
		}
	}

	u.GameStats.MissionsCompleted++
	metrics.MissionsCompleted.WithLabelValues(source).Inc()
	notify(r.notifier, u, notification.MissionCompleted(u.ID, m.ID, m.Name, r.clock.Now()))
	return out
}

func loadUser(ctx context.Context, st store.UserStore, clerkID string) (*user.User, error) {
	u, err := st.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func saveUser(ctx context.Context, st store.UserStore, u *user.User, now time.Time) error {
	u.UpdatedAt = now
	if err := st.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
