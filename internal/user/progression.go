package user

import (
	"math"
	"time"

	"gamifiedFitnessAPI/internal/clock"
)

type XPResult struct {
	XPGained  int  `json:"xpGained"`
	LeveledUp bool `json:"leveledUp"`
	NewLevel  int  `json:"newLevel"`
	TotalXP   int  `json:"totalXp"`
}

// CalculateLevel is floor(sqrt(xp/100)) + 1. Non-positive totals stay at level 1.
func CalculateLevel(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// AddXP adds amount and re-derives the level from the new total.
func (u *User) AddXP(amount int) XPResult {
	oldLevel := u.GameStats.Level
	u.GameStats.XP += amount
	u.GameStats.Level = CalculateLevel(u.GameStats.XP)

	return XPResult{
		XPGained:  amount,
		LeveledUp: u.GameStats.Level > oldLevel,
		NewLevel:  u.GameStats.Level,
		TotalXP:   u.GameStats.XP,
	}
}

func (u *User) AddCoins(amount int) int {
	u.GameStats.Coins += amount
	return u.GameStats.Coins
}

// UpdateStreak compares calendar days in the clock's location: the next day
// extends the streak, a longer gap restarts it at 1 and the same day leaves it
// alone. LastActiveDate is stamped in every case.
func (u *User) UpdateStreak(c clock.Clock) int {
	now := c.Now()

	switch days := calendarDaysBetween(u.GameStats.LastActiveDate, now); {
	case days == 1:
		u.GameStats.StreakDays++
	case days > 1:
		u.GameStats.StreakDays = 1
	}

	u.GameStats.LastActiveDate = now
	return u.GameStats.StreakDays
}

// calendarDaysBetween counts midnights crossed from a to b in b's location.
// A last-active date in the future counts as today.
func calendarDaysBetween(a, b time.Time) int {
	if a.IsZero() {
		return 0
	}
	a = a.In(b.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsSameDay reports whether t falls on the same calendar day as now.
func IsSameDay(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.YearDay() == now.YearDay()
}

// AddBadge appends b unless a badge with the same id is already unlocked.
func (u *User) AddBadge(b Badge) bool {
	if u.HasBadge(b.ID) {
		return false
	}
	u.GameStats.Badges = append(u.GameStats.Badges, b)
	return true
}

func (u *User) HasBadge(id string) bool {
	for _, b := range u.GameStats.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

type LevelProgress struct {
	CurrentLevel int     `json:"currentLevel"`
	CurrentXP    int     `json:"currentXp"`
	NextLevelXP  int     `json:"nextLevelXp"`
	Percentage   float64 `json:"percentage"`
}

func (u *User) ProgressToNextLevel() LevelProgress {
	level := u.GameStats.Level
	if level < 1 {
		level = 1
	}
	next := level * level * 100

	return LevelProgress{
		CurrentLevel: level,
		CurrentXP:    u.GameStats.XP,
		NextLevelXP:  next,
		Percentage:   float64(u.GameStats.XP%next) / float64(next) * 100,
	}
}

type CheckinReward struct {
	XP    int    `json:"xp"`
	Coins int    `json:"coins"`
	Bonus *Bonus `json:"bonus,omitempty"`
}

type Bonus struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	XP    int    `json:"xp"`
	Coins int    `json:"coins"`
}

// CheckinRewards returns the daily check-in payout for a streak length. The
// bonus is already included in XP and Coins.
func CheckinRewards(streak int) CheckinReward {
	r := CheckinReward{
		XP:    25 + streak*5,
		Coins: 10 + streak/3,
	}

	switch {
	case streak == 7:
		r.Bonus = &Bonus{Type: "weekly_streak", Name: "Week Warrior", XP: 100, Coins: 50}
	case streak == 30:
		r.Bonus = &Bonus{Type: "monthly_streak", Name: "Month Master", XP: 500, Coins: 200}
	case streak > 0 && streak%10 == 0:
		r.Bonus = &Bonus{Type: "milestone_streak", XP: streak * 10, Coins: streak * 5}
	}

	if r.Bonus != nil {
		r.XP += r.Bonus.XP
		r.Coins += r.Bonus.Coins
	}
	return r
}
