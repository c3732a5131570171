package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/notification"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const friendCodeAttempts = 5

type UserService struct {
	store   store.Store
	clock   clock.Clock
	rewards *rewarder
}

func NewUserService(st store.Store, c clock.Clock, notifier Notifier) *UserService {
	return &UserService{
		store:   st,
		clock:   c,
		rewards: &rewarder{clock: c, notifier: notifier},
	}
}

func (s *UserService) CreateUser(ctx context.Context, clerkID string, req *user.CreateUserRequest) (*user.User, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	_, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	code, err := s.newFriendCode(ctx)
	if err != nil {
		return nil, err
	}

	u := user.New(uuid.New().String(), clerkID, req.Username, req.Email, code, s.clock.Now())
	u.ImageURL = req.ImageURL
	u.Profile.FirstName = req.FirstName
	u.Profile.LastName = req.LastName

	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user": u.ID, "username": u.Username}).Info("User registered")
	return u, nil
}

// newFriendCode draws 8-character codes until one is unused.
func (s *UserService) newFriendCode(ctx context.Context) (string, error) {
	for i := 0; i < friendCodeAttempts; i++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])

		_, err := s.store.GetUserByFriendCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check friend code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate a unique friend code")
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return loadUser(ctx, s.store, clerkID)
}

func (s *UserService) UpdateProfile(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	req.Apply(u)
	if err := saveUser(ctx, s.store, u, s.clock.Now()); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetStats(ctx context.Context, clerkID string) (*user.StatsResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	return &user.StatsResponse{GameStats: u.GameStats, SustainabilityStats: u.SustainabilityStats}, nil
}

func (s *UserService) GetPublicProfile(ctx context.Context, userID string) (*user.PublicProfile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.SocialStats.PublicProfile {
		return nil, ErrProfilePrivate
	}

	p := u.PublicProfile()
	return &p, nil
}

// GetDashboard refreshes the streak and summarizes today's sessions.
func (s *UserService) GetDashboard(ctx context.Context, clerkID string) (*user.DashboardResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	u.UpdateStreak(s.clock)
	now := s.clock.Now()
	if err := saveUser(ctx, s.store, u, now); err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sessions, _, err := s.store.ListSessions(ctx, u.ID, store.SessionFilter{Since: startOfDay})
	if err != nil {
		return nil, fmt.Errorf("failed to get today's sessions: %w", err)
	}

	var today user.TodayStats
	for _, sess := range sessions {
		today.Steps += sess.Stats.Steps
		today.Distance += sess.Stats.Distance
		today.ActiveTime += sess.Duration
		today.Calories += sess.Stats.Calories
		today.Sessions++
	}

	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	active := 0
	for _, m := range missions {
		if p := m.Participants.Get(u.ID); m.IsActive && p != nil && p.Status == mission.ParticipantActive {
			active++
		}
	}

	return &user.DashboardResponse{
		User:                u,
		TodayStats:          today,
		ProgressToNextLevel: u.ProgressToNextLevel(),
		ActiveMissions:      active,
	}, nil
}

func (s *UserService) GetGameProfile(ctx context.Context, clerkID string) (*user.GameProfileResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	p := u.GameProfile()
	return &p, nil
}

// DailyCheckin pays the check-in reward once per calendar day. Streak bonuses
// with a name also unlock a badge.
func (s *UserService) DailyCheckin(ctx context.Context, clerkID string) (*user.CheckinResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if u.GameStats.LastCheckin != nil && user.IsSameDay(*u.GameStats.LastCheckin, now) {
		return nil, ErrAlreadyCheckedIn
	}

	streak := u.UpdateStreak(s.clock)
	reward := user.CheckinRewards(streak)
	xpResult := s.rewards.grant(u, reward.XP, reward.Coins)

	if b := reward.Bonus; b != nil && b.Name != "" {
		u.AddBadge(user.Badge{
			ID:          b.Type,
			Name:        b.Name,
			Description: fmt.Sprintf("Maintained %d day streak", streak),
			Icon:        "🔥",
			UnlockedAt:  now,
		})
		notify(s.rewards.notifier, u, notification.StreakBonus(u.ID, b.Name, streak, now))
	}

	u.GameStats.LastCheckin = &now
	if err := saveUser(ctx, s.store, u, now); err != nil {
		return nil, err
	}

	return &user.CheckinResponse{Streak: streak, Rewards: reward, XPResult: xpResult}, nil
}
