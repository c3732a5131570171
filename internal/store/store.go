package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"gamifiedFitnessAPI/internal/leaderboard"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/user"
)

var ErrNotFound = errors.New("not found")

// Every Save is a whole-document upsert. There are no transactions across
// documents: concurrent writers to the same document race, last write wins.

type UserStore interface {
	SaveUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	GetUserByFriendCode(ctx context.Context, code string) (*user.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*user.User, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
}

type SessionFilter struct {
	Status session.Status
	Since  time.Time
	Limit  int
	Offset int
}

type SessionStore interface {
	SaveSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, id string) (*session.Session, error)
	GetActiveSession(ctx context.Context, userID string) (*session.Session, error)
	// ListSessions returns one page, newest first, and the total match count.
	ListSessions(ctx context.Context, userID string, f SessionFilter) ([]*session.Session, int, error)
}

type MissionStore interface {
	SaveMission(ctx context.Context, m *mission.Mission) error
	GetMission(ctx context.Context, id string) (*mission.Mission, error)
	GetMissionByName(ctx context.Context, name string) (*mission.Mission, error)
	ListMissions(ctx context.Context) ([]*mission.Mission, error)
}

type LeaderboardStore interface {
	SaveLeaderboard(ctx context.Context, lb *leaderboard.Leaderboard) error
	GetLeaderboard(ctx context.Context, t leaderboard.Type, c leaderboard.Category, missionID string) (*leaderboard.Leaderboard, error)
}

type Store interface {
	UserStore
	SessionStore
	MissionStore
	LeaderboardStore
	Ping(ctx context.Context) error
	Close() error
}

// page applies offset and limit to an already filtered slice.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func matchesFilter(s *session.Session, f SessionFilter) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && s.StartTime.Before(f.Since) {
		return false
	}
	return true
}

func sortByCreated(users []*user.User) {
	slices.SortStableFunc(users, func(a, b *user.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

func sortMissionsNewestFirst(missions []*mission.Mission) {
	slices.SortStableFunc(missions, func(a, b *mission.Mission) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
