package mission

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeFitness        Type = "fitness"
	TypeSocial         Type = "social"
	TypeSustainability Type = "sustainability"
	TypeExploration    Type = "exploration"
	TypeChallenge      Type = "challenge"
)

type Category string

const (
	CategoryDaily       Category = "daily"
	CategoryWeekly      Category = "weekly"
	CategoryMonthly     Category = "monthly"
	CategorySpecial     Category = "special"
	CategoryAchievement Category = "achievement"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyHard      Difficulty = "hard"
	DifficultyLegendary Difficulty = "legendary"
)

var (
	ErrAlreadyParticipating = errors.New("already participating in this mission")
	ErrMissionExpired       = errors.New("mission has expired")
	ErrNotParticipating     = errors.New("not actively participating in this mission")
	ErrRequirementsNotMet   = errors.New("mission requirements not met")
)

type LocationRequirement struct {
	Name   string  `json:"name" yaml:"name"`
	Lat    float64 `json:"lat" yaml:"lat"`
	Lng    float64 `json:"lng" yaml:"lng"`
	Radius float64 `json:"radius" yaml:"radius"` // meters
}

// Requirements lists the goals of a mission. A dimension counts as present
// when it is non-zero (Locations: non-empty).
type Requirements struct {
	Steps      int                   `json:"steps,omitempty" yaml:"steps"`
	Distance   float64               `json:"distance,omitempty" yaml:"distance"`     // meters
	ActiveTime float64               `json:"activeTime,omitempty" yaml:"activeTime"` // minutes
	Locations  []LocationRequirement `json:"locations,omitempty" yaml:"locations"`
	Friends    int                   `json:"friends,omitempty" yaml:"friends"`
	StreakDays int                   `json:"streakDays,omitempty" yaml:"streakDays"`
	CustomGoal string                `json:"customGoal,omitempty" yaml:"customGoal"`
}

type BadgeReward struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}

type Rewards struct {
	XP    int          `json:"xp" yaml:"xp"`
	Coins int          `json:"coins" yaml:"coins"`
	Badge *BadgeReward `json:"badge,omitempty" yaml:"badge"`
	Items []string     `json:"items,omitempty" yaml:"items"`
}

type TimeLimit struct {
	Duration  float64    `json:"duration,omitempty"` // hours
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type Metadata struct {
	TotalParticipants     int     `json:"totalParticipants"`
	CompletionRate        float64 `json:"completionRate"`
	AverageCompletionTime float64 `json:"averageCompletionTime"` // hours
}

type Mission struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Type         Type         `json:"type"`
	Category     Category     `json:"category"`
	Difficulty   Difficulty   `json:"difficulty"`
	Requirements Requirements `json:"requirements"`
	Rewards      Rewards      `json:"rewards"`
	TimeLimit    *TimeLimit   `json:"timeLimit,omitempty"`
	IsActive     bool         `json:"isActive"`
	IsGlobal     bool         `json:"isGlobal"`
	CreatedBy    string       `json:"createdBy,omitempty"`
	Participants Participants `json:"participants"`
	Metadata     Metadata     `json:"metadata"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Template is the authorable part of a mission, used by the default catalog
// and by user-created missions.
type Template struct {
	Name           string       `json:"name" yaml:"name"`
	Description    string       `json:"description" yaml:"description"`
	Type           Type         `json:"type" yaml:"type"`
	Category       Category     `json:"category" yaml:"category"`
	Difficulty     Difficulty   `json:"difficulty,omitempty" yaml:"difficulty"`
	Requirements   Requirements `json:"requirements" yaml:"requirements"`
	Rewards        Rewards      `json:"rewards" yaml:"rewards"`
	TimeLimitHours float64      `json:"timeLimitHours,omitempty" yaml:"timeLimitHours"`
}

// New instantiates t. A time limit starts counting at now.
func New(t Template, createdBy string, global bool, now time.Time) *Mission {
	difficulty := t.Difficulty
	if difficulty == "" {
		difficulty = DifficultyEasy
	}

	m := &Mission{
		ID:           uuid.New().String(),
		Name:         t.Name,
		Description:  t.Description,
		Type:         t.Type,
		Category:     t.Category,
		Difficulty:   difficulty,
		Requirements: t.Requirements,
		Rewards:      t.Rewards,
		IsActive:     true,
		IsGlobal:     global,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if t.TimeLimitHours > 0 {
		expires := now.Add(time.Duration(t.TimeLimitHours * float64(time.Hour)))
		m.TimeLimit = &TimeLimit{Duration: t.TimeLimitHours, ExpiresAt: &expires}
	}
	return m
}

func (m *Mission) IsExpired(now time.Time) bool {
	return m.TimeLimit != nil && m.TimeLimit.ExpiresAt != nil && now.After(*m.TimeLimit.ExpiresAt)
}

// IsAvailableTo reports whether userID can still join: the mission is active,
// visible to them and they have no participant record yet.
func (m *Mission) IsAvailableTo(userID string) bool {
	if !m.IsActive {
		return false
	}
	if !m.IsGlobal && m.CreatedBy != userID {
		return false
	}
	return m.Participants.Get(userID) == nil
}
