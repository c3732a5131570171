package services

import (
	"context"
	"fmt"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/sustainability"
	"gamifiedFitnessAPI/internal/user"

	"github.com/sirupsen/logrus"
)

const sustainabilityLeaderboardSize = 50

type SustainabilityService struct {
	store   store.Store
	clock   clock.Clock
	rewards *rewarder
}

func NewSustainabilityService(st store.Store, c clock.Clock, notifier Notifier) *SustainabilityService {
	return &SustainabilityService{
		store:   st,
		clock:   c,
		rewards: &rewarder{clock: c, notifier: notifier},
	}
}

func (s *SustainabilityService) PlantTree(ctx context.Context, clerkID string) (*sustainability.TreeResult, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	res, err := sustainability.PlantTree(u)
	if err != nil {
		return nil, err
	}
	s.afterRewards(u, res.Rewards)

	if err := saveUser(ctx, s.store, u, s.clock.Now()); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": u.ID, "trees": res.TreesPlanted}).Info("Tree planted")
	return res, nil
}

func (s *SustainabilityService) LogGreenTravel(ctx context.Context, clerkID string, req *sustainability.LogGreenTravelRequest) (*sustainability.TravelResult, error) {
	if req.Distance <= 0 || req.TransportMode == "" {
		return nil, fmt.Errorf("%w: distance and transport mode are required", ErrInvalidInput)
	}

	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	res, err := sustainability.LogGreenTravel(u, req.Distance, req.TransportMode, req.CarbonSaved)
	if err != nil {
		return nil, err
	}
	s.afterRewards(u, res.Rewards)

	if err := saveUser(ctx, s.store, u, s.clock.Now()); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SustainabilityService) RecordCleanup(ctx context.Context, clerkID string, req *sustainability.CleanupRequest) (*sustainability.CleanupResult, error) {
	if req.Location == nil || req.Location.Lat == 0 || req.Location.Lng == 0 {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	res := sustainability.RecordCleanup(u, s.clock.Now())
	s.afterRewards(u, res.Rewards)

	if err := saveUser(ctx, s.store, u, s.clock.Now()); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SustainabilityService) GetStats(ctx context.Context, clerkID string) (*sustainability.Summary, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	summary := sustainability.Summarize(u.SustainabilityStats)
	return &summary, nil
}

func (s *SustainabilityService) GetLeaderboard(ctx context.Context, clerkID string, metric sustainability.Metric) (*sustainability.LeaderboardResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ranked := sustainability.Rank(users, metric, sustainabilityLeaderboardSize)
	resp := &sustainability.LeaderboardResponse{Leaderboard: ranked, Type: metric}
	for _, r := range ranked {
		if r.UserID == u.ID {
			rank := r.Rank
			resp.UserPosition = &rank
			break
		}
	}
	return resp, nil
}

func (s *SustainabilityService) GetChallenges(ctx context.Context, clerkID string) ([]sustainability.Challenge, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	return sustainability.Challenges(u.SustainabilityStats, s.clock.Now()), nil
}

// afterRewards emits the level-up side effects for xp the sustainability
// package already applied.
func (s *SustainabilityService) afterRewards(u *user.User, r sustainability.Rewards) {
	s.rewards.afterXP(u, user.XPResult{
		XPGained:  r.XP,
		LeveledUp: r.LevelUp,
		NewLevel:  r.NewLevel,
		TotalXP:   u.GameStats.XP,
	})
}
