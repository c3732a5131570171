package sustainability

import (
	"time"

	"gamifiedFitnessAPI/internal/user"
)

type ChallengeReward struct {
	XP    int    `json:"xp"`
	Coins int    `json:"coins"`
	Badge string `json:"badge"`
}

type Challenge struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Target      float64         `json:"target"`
	Progress    float64         `json:"progress"`
	Reward      ChallengeReward `json:"reward"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
}

// Challenges lists the standing sustainability challenges with the user's
// progress. Deadlines are the last instant of the current week or month.
func Challenges(s user.SustainabilityStats, now time.Time) []Challenge {
	endOfWeek := endOfDay(now.AddDate(0, 0, 7-int(now.Weekday())))
	endOfMonth := endOfDay(time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()))

	return []Challenge{
		{
			ID:          "weekly_green_commute",
			Name:        "Green Commuter",
			Description: "Travel 25km using eco-friendly transport this week",
			Type:        "weekly",
			Target:      25000,
			Progress:    s.GreenMiles,
			Reward:      ChallengeReward{XP: 200, Coins: 100, Badge: "Green Commuter"},
			Deadline:    &endOfWeek,
		},
		{
			ID:          "monthly_tree_planter",
			Name:        "Forest Guardian",
			Description: "Plant 5 virtual trees this month",
			Type:        "monthly",
			Target:      5,
			Progress:    float64(s.TreesPlanted),
			Reward:      ChallengeReward{XP: 500, Coins: 250, Badge: "Forest Guardian"},
			Deadline:    &endOfMonth,
		},
		{
			ID:          "cleanup_hero",
			Name:        "Cleanup Hero",
			Description: "Complete 3 cleanup missions",
			Type:        "ongoing",
			Target:      3,
			Progress:    float64(s.CleanupMissions),
			Reward:      ChallengeReward{XP: 300, Coins: 150, Badge: "Cleanup Hero"},
		},
	}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Millisecond*999), t.Location())
}
