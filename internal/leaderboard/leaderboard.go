package leaderboard

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeDaily           Type = "daily"
	TypeWeekly          Type = "weekly"
	TypeMonthly         Type = "monthly"
	TypeAllTime         Type = "all_time"
	TypeMissionSpecific Type = "mission_specific"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeAllTime, TypeMissionSpecific:
		return t, nil
	}
	return "", fmt.Errorf("unknown leaderboard type %q", s)
}

type Category string

const (
	CategorySteps             Category = "steps"
	CategoryDistance          Category = "distance"
	CategoryActiveTime        Category = "active_time"
	CategoryXP                Category = "xp"
	CategoryEcoScore          Category = "eco_score"
	CategoryMissionsCompleted Category = "missions_completed"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategorySteps, CategoryDistance, CategoryActiveTime, CategoryXP, CategoryEcoScore, CategoryMissionsCompleted:
		return c, nil
	}
	return "", fmt.Errorf("unknown leaderboard category %q", s)
}

type Change string

const (
	ChangeUp   Change = "up"
	ChangeDown Change = "down"
	ChangeSame Change = "same"
	ChangeNew  Change = "new"
)

// Metadata is a copy of the user's stats taken at rebuild time.
type Metadata struct {
	Steps             int     `json:"steps"`
	Distance          float64 `json:"distance"`
	ActiveTime        float64 `json:"activeTime"`
	XP                int     `json:"xp"`
	Level             int     `json:"level"`
	Badges            int     `json:"badges"`
	TreesPlanted      int     `json:"treesPlanted"`
	MissionsCompleted int     `json:"missionsCompleted"`
	StreakDays        int     `json:"streakDays"`
}

type Entry struct {
	UserID       string   `json:"userId"`
	Username     string   `json:"username"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Rank         int      `json:"rank"`
	Score        float64  `json:"score"`
	Metadata     Metadata `json:"metadata"`
	Change       Change   `json:"change"`
	PreviousRank *int     `json:"previousRank,omitempty"`
}

type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Leaderboard struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Category    Category  `json:"category"`
	MissionID   string    `json:"missionId,omitempty"`
	Period      *Period   `json:"period,omitempty"`
	Entries     []Entry   `json:"entries"`
	IsActive    bool      `json:"isActive"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Key identifies a leaderboard by type, category and optional mission.
func Key(t Type, c Category, missionID string) string {
	return fmt.Sprintf("%s:%s:%s", t, c, missionID)
}

func (lb *Leaderboard) Key() string {
	return Key(lb.Type, lb.Category, lb.MissionID)
}

// PeriodFor returns the calendar window a leaderboard type covers at now.
// Weeks start on Sunday. All-time and mission boards have no period.
func PeriodFor(t Type, now time.Time) *Period {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch t {
	case TypeDaily:
		return &Period{StartDate: startOfDay, EndDate: startOfDay.AddDate(0, 0, 1)}
	case TypeWeekly:
		start := startOfDay.AddDate(0, 0, -int(startOfDay.Weekday()))
		return &Period{StartDate: start, EndDate: start.AddDate(0, 0, 7)}
	case TypeMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &Period{StartDate: start, EndDate: start.AddDate(0, 1, 0)}
	}
	return nil
}

type View struct {
	Type         Type      `json:"type"`
	Category     Category  `json:"category"`
	Entries      []Entry   `json:"entries"`
	UserPosition *Entry    `json:"userPosition"`
	TotalUsers   int       `json:"totalUsers"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// ViewFor is the response shape for a leaderboard as seen by userID.
func (lb *Leaderboard) ViewFor(userID string, limit int) View {
	return View{
		Type:         lb.Type,
		Category:     lb.Category,
		Entries:      lb.Top(limit),
		UserPosition: lb.Position(userID),
		TotalUsers:   len(lb.Entries),
		LastUpdated:  lb.LastUpdated,
	}
}

type AroundResponse struct {
	Entries      []Entry `json:"entries"`
	UserPosition *Entry  `json:"userPosition"`
}

type FriendEntry struct {
	Entry
	IsCurrentUser bool `json:"isCurrentUser"`
}

type UpdateSummary struct {
	Type         Type      `json:"type"`
	Category     Category  `json:"category"`
	TotalEntries int       `json:"totalEntries"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// IsCurrent reports whether now falls inside the board's period. Boards
// without a period never expire.
func (lb *Leaderboard) IsCurrent(now time.Time) bool {
	if lb.Period == nil {
		return true
	}
	return !now.Before(lb.Period.StartDate) && now.Before(lb.Period.EndDate)
}
