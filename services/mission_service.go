package services

import (
	"context"
	"errors"
	"fmt"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/store"

	"github.com/sirupsen/logrus"
)

const availableMissionsLimit = 20

type MissionService struct {
	store   store.Store
	tracker *mission.Tracker
	catalog *mission.Catalog
	rewards *rewarder
}

func NewMissionService(st store.Store, c clock.Clock, catalog *mission.Catalog, notifier Notifier) *MissionService {
	return &MissionService{
		store:   st,
		tracker: mission.NewTracker(c),
		catalog: catalog,
		rewards: &rewarder{clock: c, notifier: notifier},
	}
}

func (s *MissionService) GetActiveMissions(ctx context.Context, clerkID string) ([]mission.UserMission, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	out := []mission.UserMission{}
	for _, m := range missions {
		p := m.Participants.Get(u.ID)
		if !m.IsActive || p == nil || p.Status != mission.ParticipantActive {
			continue
		}
		out = append(out, mission.UserMission{
			Mission:              m,
			UserProgress:         p.Progress,
			CompletionPercentage: m.CompletionPercentage(u.ID),
			StartedAt:            p.StartedAt,
		})
	}
	return out, nil
}

// GetAvailableMissions lists missions the user could join, newest first.
func (s *MissionService) GetAvailableMissions(ctx context.Context, clerkID string, f mission.AvailableFilter) ([]*mission.Mission, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	out := []*mission.Mission{}
	for _, m := range missions {
		if !m.IsAvailableTo(u.ID) || !f.Matches(m) {
			continue
		}
		out = append(out, m)
		if len(out) == availableMissionsLimit {
			break
		}
	}
	return out, nil
}

func (s *MissionService) JoinMission(ctx context.Context, clerkID, missionID string) (*mission.UserMission, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	m, err := s.getMission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, fmt.Errorf("mission inactive: %w", store.ErrNotFound)
	}

	p, err := s.tracker.Join(m, u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveMission(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to join mission: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user": u.ID, "mission": m.ID}).Info("Mission joined")
	return &mission.UserMission{
		Mission:      m,
		UserProgress: p.Progress,
		StartedAt:    p.StartedAt,
	}, nil
}

// CompleteMission is the explicit claim: requirements must be met while the
// participant is still active.
func (s *MissionService) CompleteMission(ctx context.Context, clerkID, missionID string) (*mission.CompleteResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	m, err := s.getMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.tracker.Complete(m, u.ID); err != nil {
		return nil, err
	}
	rewards := s.rewards.missionCompleted(u, m, "claim")

	// The mission holds the completed transition, so it is written first: a
	// failed user save can lose a payout but never repeat one.
	if err := s.store.SaveMission(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save mission: %w", err)
	}
	if err := saveUser(ctx, s.store, u, s.tracker.Now()); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user": u.ID, "mission": m.ID, "xp": rewards.XP}).Info("Mission completed")
	return &mission.CompleteResponse{Mission: m, Rewards: rewards}, nil
}

func (s *MissionService) GetCompletedMissions(ctx context.Context, clerkID string) ([]mission.CompletedMission, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	out := []mission.CompletedMission{}
	for _, m := range missions {
		p := m.Participants.Get(u.ID)
		if p == nil || p.Status != mission.ParticipantCompleted {
			continue
		}
		cm := mission.CompletedMission{Mission: m, CompletedAt: p.CompletedAt}
		if p.CompletedAt != nil {
			cm.TimeTaken = p.CompletedAt.Sub(p.StartedAt).Hours()
		}
		out = append(out, cm)
	}
	return out, nil
}

// CreateMission stores a private mission owned by the caller.
func (s *MissionService) CreateMission(ctx context.Context, clerkID string, tmpl *mission.Template) (*mission.Mission, error) {
	if tmpl.Name == "" {
		return nil, fmt.Errorf("%w: mission name is required", ErrInvalidInput)
	}

	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	m := s.tracker.New(*tmpl, u.ID, false)
	if err := s.store.SaveMission(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create mission: %w", err)
	}
	return m, nil
}

func (s *MissionService) GetMissionLeaderboard(ctx context.Context, missionID string) (*mission.LeaderboardResponse, error) {
	m, err := s.getMission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	return &mission.LeaderboardResponse{
		MissionID:   m.ID,
		MissionName: m.Name,
		Leaderboard: m.Leaderboard(),
	}, nil
}

// UpdateProgress applies a progress report. Reaching every requirement
// completes the mission and pays its rewards in the same call.
func (s *MissionService) UpdateProgress(ctx context.Context, clerkID, missionID string, delta mission.ProgressDelta) (*mission.ProgressResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	m, err := s.getMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	p, completed := s.tracker.UpdateProgress(m, u.ID, delta)
	resp := &mission.ProgressResponse{
		Progress:             p.Progress,
		CompletionPercentage: m.CompletionPercentage(u.ID),
		Completed:            p.Status == mission.ParticipantCompleted,
	}

	if completed {
		rewards := s.rewards.missionCompleted(u, m, "progress")
		resp.Rewards = &rewards
	}

	if err := s.store.SaveMission(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save mission progress: %w", err)
	}
	if completed {
		if err := saveUser(ctx, s.store, u, s.tracker.Now()); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// InitDefaults creates each catalog mission whose name is not taken yet and
// returns how many were created.
func (s *MissionService) InitDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, tmpl := range s.catalog.Missions {
		_, err := s.store.GetMissionByName(ctx, tmpl.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return created, fmt.Errorf("failed to look up mission %q: %w", tmpl.Name, err)
		}

		m := s.tracker.New(tmpl, "", true)
		if err := s.store.SaveMission(ctx, m); err != nil {
			return created, fmt.Errorf("failed to create mission %q: %w", tmpl.Name, err)
		}
		created++
	}

	if created > 0 {
		logrus.WithField("created", created).Info("Default missions initialized")
	}
	return created, nil
}

func (s *MissionService) getMission(ctx context.Context, id string) (*mission.Mission, error) {
	m, err := s.store.GetMission(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("mission not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return m, nil
}
