package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/metrics"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/notification"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/sustainability"
	"gamifiedFitnessAPI/internal/user"

	"github.com/sirupsen/logrus"
)

const defaultSessionPageSize = 10

type FitnessService struct {
	store    store.Store
	clock    clock.Clock
	recorder *session.Recorder
	tracker  *mission.Tracker
	rewards  *rewarder
}

func NewFitnessService(st store.Store, c clock.Clock, order session.WaypointOrder, notifier Notifier) *FitnessService {
	return &FitnessService{
		store:    st,
		clock:    c,
		recorder: session.NewRecorder(c, order),
		tracker:  mission.NewTracker(c),
		rewards:  &rewarder{clock: c, notifier: notifier},
	}
}

func (s *FitnessService) StartSession(ctx context.Context, clerkID string, req *session.StartSessionRequest) (*session.Session, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.GetActiveSession(ctx, u.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}
	if active != nil {
		return nil, ErrActiveSessionExists
	}

	sess := s.recorder.Start(u.ID, req.Type, req.StartLocation)
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user": u.ID, "session": sess.ID, "type": sess.Type}).Info("Session started")
	return sess, nil
}

// AddWaypoints appends to an active session in request order.
func (s *FitnessService) AddWaypoints(ctx context.Context, clerkID, sessionID string, wps []session.Waypoint) (*session.Session, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	sess, err := s.activeSession(ctx, u.ID, sessionID)
	if err != nil {
		return nil, err
	}

	for _, wp := range wps {
		s.recorder.AppendWaypoint(sess, wp)
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return sess, nil
}

// StopSession finalizes the session and settles everything it earned: badges
// for new achievement types, lifetime totals, xp and coins, the streak and
// progress on every mission the user is actively in.
func (s *FitnessService) StopSession(ctx context.Context, clerkID, sessionID string, req *session.StopSessionRequest) (*session.StopSessionResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	sess, err := s.activeSession(ctx, u.ID, sessionID)
	if err != nil {
		return nil, err
	}

	if req.EndLocation != nil {
		sess.EndLocation = req.EndLocation
	}
	if req.Notes != "" {
		sess.Notes = req.Notes
	}

	s.recorder.Complete(sess)
	achievements := s.recorder.CheckAchievements(sess)

	mode := sustainability.TransportMode(sess.Sustainability.TransportMode)
	sess.Sustainability.CarbonSaved = sustainability.CarbonSaved(sess.Stats.Distance, mode)
	sess.Sustainability.IsEcoFriendly = sustainability.IsEcoFriendly(mode)

	u.GameStats.TotalSteps += sess.Stats.Steps
	u.GameStats.TotalDistance += sess.Stats.Distance
	u.GameStats.TotalActiveTime += sess.Duration

	xp, coins := session.Rewards(sess)
	now := s.clock.Now()
	var unlocked []*notification.Notification
	for _, a := range achievements {
		added := u.AddBadge(user.Badge{
			ID:          a.Type,
			Name:        a.Name,
			Description: a.Description,
			Icon:        "achievement_" + a.Type,
			UnlockedAt:  now,
		})
		if added {
			xp += a.XPReward
			coins += a.CoinReward
			unlocked = append(unlocked, notification.AchievementUnlocked(u.ID, a.Name, a.XPReward, now))
		}
	}

	xpResult := s.rewards.grant(u, xp, coins)
	u.UpdateStreak(s.clock)

	updates, err := s.contributeToMissions(ctx, u, sess)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	if err := saveUser(ctx, s.store, u, now); err != nil {
		return nil, err
	}

	metrics.SessionsCompleted.WithLabelValues(string(sess.Type)).Inc()
	notify(s.rewards.notifier, u, unlocked...)

	logrus.WithFields(logrus.Fields{
		"user":     u.ID,
		"session":  sess.ID,
		"distance": math.Round(sess.Stats.Distance),
		"duration": math.Round(sess.Duration),
		"xp":       xp,
	}).Info("Session completed")

	return &session.StopSessionResponse{
		Session:      sess,
		Achievements: achievements,
		Rewards: session.SessionRewards{
			XP:       xp,
			Coins:    coins,
			LevelUp:  xpResult.LeveledUp,
			NewLevel: xpResult.NewLevel,
		},
		MissionUpdates: updates,
	}, nil
}

// contributeToMissions reports the session's totals as progress on each
// unexpired mission where u is an active participant. Progress ratchets, so a session
// only moves a mission forward when it beats the best report so far.
func (s *FitnessService) contributeToMissions(ctx context.Context, u *user.User, sess *session.Session) ([]session.MissionUpdate, error) {
	missions, err := s.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	steps, distance, activeTime := sess.Stats.Steps, sess.Stats.Distance, sess.Duration
	delta := mission.ProgressDelta{Steps: &steps, Distance: &distance, ActiveTime: &activeTime}

	updates := []session.MissionUpdate{}
	for _, m := range missions {
		p := m.Participants.Get(u.ID)
		if !m.IsActive || m.IsExpired(s.tracker.Now()) || p == nil || p.Status != mission.ParticipantActive {
			continue
		}

		_, completed := s.tracker.UpdateProgress(m, u.ID, delta)
		if completed {
			s.rewards.missionCompleted(u, m, "session")
		}
		if err := s.store.SaveMission(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to save mission progress: %w", err)
		}

		sess.Missions = append(sess.Missions, session.MissionContribution{
			MissionID:  m.ID,
			Steps:      steps,
			Distance:   distance,
			ActiveTime: activeTime,
		})
		updates = append(updates, session.MissionUpdate{
			MissionID: m.ID,
			Name:      m.Name,
			Completed: m.IsCompleted(u.ID),
		})
	}
	return updates, nil
}

func (s *FitnessService) GetSessions(ctx context.Context, clerkID string, status session.Status, page, limit int) (*session.ListResponse, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultSessionPageSize
	}

	sessions, total, err := s.store.ListSessions(ctx, u.ID, store.SessionFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	return &session.ListResponse{
		Sessions: sessions,
		Pagination: session.Pagination{
			Current: page,
			Pages:   int(math.Ceil(float64(total) / float64(limit))),
			Total:   total,
		},
	}, nil
}

func (s *FitnessService) GetSession(ctx context.Context, clerkID, sessionID string) (*session.Session, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}
	return s.ownedSession(ctx, u.ID, sessionID)
}

// GetActiveSession returns nil without error when the user has none.
func (s *FitnessService) GetActiveSession(ctx context.Context, clerkID string) (*session.Session, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.GetActiveSession(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return sess, nil
}

func (s *FitnessService) EnterGeofence(ctx context.Context, clerkID string, req *session.GeofenceEntryRequest) (*session.Geofence, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	sess, err := s.activeSession(ctx, u.ID, req.SessionID)
	if err != nil {
		return nil, err
	}

	at := s.clock.Now()
	if req.EntryTime != nil {
		at = *req.EntryTime
	}
	g, err := s.recorder.EnterGeofence(sess, req.GeofenceID, req.GeofenceName, at)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to record geofence entry: %w", err)
	}
	return g, nil
}

// ExitGeofence returns the minutes spent inside.
func (s *FitnessService) ExitGeofence(ctx context.Context, clerkID string, req *session.GeofenceExitRequest) (float64, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return 0, err
	}

	sess, err := s.activeSession(ctx, u.ID, req.SessionID)
	if err != nil {
		return 0, err
	}

	at := s.clock.Now()
	if req.ExitTime != nil {
		at = *req.ExitTime
	}
	spent, err := s.recorder.ExitGeofence(sess, req.GeofenceID, at)
	if err != nil {
		return 0, err
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return 0, fmt.Errorf("failed to record geofence exit: %w", err)
	}
	return spent, nil
}

// ownedSession hides other users' sessions behind ErrNotFound.
func (s *FitnessService) ownedSession(ctx context.Context, userID, sessionID string) (*session.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("session not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("session not found: %w", store.ErrNotFound)
	}
	return sess, nil
}

func (s *FitnessService) activeSession(ctx context.Context, userID, sessionID string) (*session.Session, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, ErrSessionNotActive
	}
	return sess, nil
}
