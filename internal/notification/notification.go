package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindLevelUp         Kind = "level_up"
	KindAchievement     Kind = "achievement"
	KindMissionComplete Kind = "mission_complete"
	KindStreak          Kind = "streak"
)

type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Kind      Kind              `json:"kind"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func newNotification(userID string, kind Kind, title, body string, data map[string]string, now time.Time) *Notification {
	if data == nil {
		data = map[string]string{}
	}
	data["kind"] = string(kind)
	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: now,
	}
}

func LevelUp(userID string, level int, now time.Time) *Notification {
	return newNotification(userID, KindLevelUp,
		"Level up!",
		fmt.Sprintf("You reached level %d. Keep moving!", level),
		map[string]string{"level": fmt.Sprint(level)},
		now,
	)
}

func AchievementUnlocked(userID, name string, xp int, now time.Time) *Notification {
	return newNotification(userID, KindAchievement,
		"Achievement unlocked",
		fmt.Sprintf("%s (+%d XP)", name, xp),
		map[string]string{"achievement": name},
		now,
	)
}

func MissionCompleted(userID, missionID, missionName string, now time.Time) *Notification {
	return newNotification(userID, KindMissionComplete,
		"Mission complete",
		fmt.Sprintf("You finished %q. Claim your rewards!", missionName),
		map[string]string{"missionId": missionID},
		now,
	)
}

func StreakBonus(userID, name string, streak int, now time.Time) *Notification {
	return newNotification(userID, KindStreak,
		name,
		fmt.Sprintf("%d day streak. Bonus rewards added.", streak),
		map[string]string{"streak": fmt.Sprint(streak)},
		now,
	)
}
