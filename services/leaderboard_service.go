package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/leaderboard"
	"gamifiedFitnessAPI/internal/metrics"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LeaderboardService struct {
	store store.Store
	clock clock.Clock
	size  int
}

// NewLeaderboardService ranks at most size users per board.
func NewLeaderboardService(st store.Store, c clock.Clock, size int) *LeaderboardService {
	if size < 1 {
		size = 100
	}
	return &LeaderboardService{store: st, clock: c, size: size}
}

// GetLeaderboard returns the stored board, building it on first request.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, clerkID string, t leaderboard.Type, c leaderboard.Category, limit int) (*leaderboard.View, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	lb, err := s.store.GetLeaderboard(ctx, t, c, "")
	if errors.Is(err, store.ErrNotFound) {
		lb, err = s.rebuild(ctx, t, c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	view := lb.ViewFor(u.ID, limit)
	return &view, nil
}

func (s *LeaderboardService) GetAroundMe(ctx context.Context, clerkID string, t leaderboard.Type, c leaderboard.Category, rng int) (*leaderboard.AroundResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	lb, err := s.store.GetLeaderboard(ctx, t, c, "")
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("leaderboard not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return &leaderboard.AroundResponse{
		Entries:      lb.Around(u.ID, rng),
		UserPosition: lb.Position(u.ID),
	}, nil
}

func (s *LeaderboardService) UpdateLeaderboard(ctx context.Context, t leaderboard.Type, c leaderboard.Category) (*leaderboard.UpdateSummary, error) {
	lb, err := s.rebuild(ctx, t, c)
	if err != nil {
		return nil, err
	}
	return &leaderboard.UpdateSummary{
		Type:         lb.Type,
		Category:     lb.Category,
		TotalEntries: len(lb.Entries),
		LastUpdated:  lb.LastUpdated,
	}, nil
}

// rebuild reads every user, ranks the top size by category and replaces the
// stored board. Reads and the write are not atomic: a concurrent rebuild of
// the same board wins or loses as a whole.
func (s *LeaderboardService) rebuild(ctx context.Context, t leaderboard.Type, c leaderboard.Category) (*leaderboard.Leaderboard, error) {
	start := time.Now()
	defer metrics.ObserveRebuild(string(t), string(c), start)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	leaderboard.SortUsersByCategory(users, c)
	if len(users) > s.size {
		users = users[:s.size]
	}

	now := s.clock.Now()
	lb, err := s.store.GetLeaderboard(ctx, t, c, "")
	switch {
	case errors.Is(err, store.ErrNotFound):
		lb = s.newBoard(t, c, now)
	case err != nil:
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	case !lb.IsCurrent(now):
		lb = s.newBoard(t, c, now)
	}

	lb.Update(users, now)
	if err := s.store.SaveLeaderboard(ctx, lb); err != nil {
		return nil, fmt.Errorf("failed to save leaderboard: %w", err)
	}

	logrus.WithFields(logrus.Fields{"type": t, "category": c, "entries": len(lb.Entries)}).Info("Leaderboard rebuilt")
	return lb, nil
}

func (s *LeaderboardService) newBoard(t leaderboard.Type, c leaderboard.Category, now time.Time) *leaderboard.Leaderboard {
	return &leaderboard.Leaderboard{
		ID:        uuid.New().String(),
		Type:      t,
		Category:  c,
		Period:    leaderboard.PeriodFor(t, now),
		Entries:   []leaderboard.Entry{},
		IsActive:  true,
		CreatedAt: now,
	}
}

// GetFriendsLeaderboard ranks the user against their friends. A user with no
// friends gets an empty board.
func (s *LeaderboardService) GetFriendsLeaderboard(ctx context.Context, clerkID string, c leaderboard.Category) ([]leaderboard.FriendEntry, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	if len(u.SocialStats.Friends) == 0 {
		return []leaderboard.FriendEntry{}, nil
	}

	friends, err := s.store.GetUsersByIDs(ctx, u.SocialStats.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	all := append([]*user.User{u}, friends...)
	leaderboard.SortUsersByCategory(all, c)

	entries := leaderboard.Rebuild(leaderboard.TypeAllTime, c, all, nil)
	out := make([]leaderboard.FriendEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboard.FriendEntry{Entry: e, IsCurrentUser: e.UserID == u.ID})
	}
	return out, nil
}

var periodicTypes = []leaderboard.Type{
	leaderboard.TypeDaily,
	leaderboard.TypeWeekly,
	leaderboard.TypeMonthly,
	leaderboard.TypeAllTime,
}

var allCategories = []leaderboard.Category{
	leaderboard.CategoryXP,
	leaderboard.CategorySteps,
	leaderboard.CategoryDistance,
	leaderboard.CategoryActiveTime,
	leaderboard.CategoryEcoScore,
	leaderboard.CategoryMissionsCompleted,
}

// GetCurrentLeaderboards groups the stored boards whose period covers now by
// type.
func (s *LeaderboardService) GetCurrentLeaderboards(ctx context.Context) (map[leaderboard.Type][]*leaderboard.Leaderboard, error) {
	now := s.clock.Now()
	out := make(map[leaderboard.Type][]*leaderboard.Leaderboard, len(periodicTypes))

	for _, t := range periodicTypes {
		out[t] = []*leaderboard.Leaderboard{}
		for _, c := range allCategories {
			lb, err := s.store.GetLeaderboard(ctx, t, c, "")
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get leaderboard: %w", err)
			}
			if lb.IsActive && lb.IsCurrent(now) {
				out[t] = append(out[t], lb)
			}
		}
	}
	return out, nil
}
