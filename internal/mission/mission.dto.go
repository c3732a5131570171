package mission

import (
	"time"

	"gamifiedFitnessAPI/internal/user"
)

// UserMission is a mission as seen by one participant.
type UserMission struct {
	*Mission
	UserProgress         Progress  `json:"userProgress"`
	CompletionPercentage float64   `json:"completionPercentage"`
	StartedAt            time.Time `json:"startedAt"`
}

type CompletedMission struct {
	*Mission
	CompletedAt *time.Time `json:"completedAt"`
	TimeTaken   float64    `json:"timeTaken"` // hours
}

type AvailableFilter struct {
	Category   Category
	Type       Type
	Difficulty Difficulty
}

func (f AvailableFilter) Matches(m *Mission) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.Difficulty != "" && m.Difficulty != f.Difficulty {
		return false
	}
	return true
}

type CompletionRewards struct {
	XP       int         `json:"xp"`
	Coins    int         `json:"coins"`
	LevelUp  bool        `json:"levelUp"`
	NewLevel int         `json:"newLevel"`
	Badge    *user.Badge `json:"badge,omitempty"`
}

type CompleteResponse struct {
	Mission *Mission          `json:"mission"`
	Rewards CompletionRewards `json:"rewards"`
}

type ProgressResponse struct {
	Progress             Progress           `json:"progress"`
	CompletionPercentage float64            `json:"completionPercentage"`
	Completed            bool               `json:"completed"`
	Rewards              *CompletionRewards `json:"rewards,omitempty"`
}

type LeaderboardResponse struct {
	MissionID   string             `json:"missionId"`
	MissionName string             `json:"missionName"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
