package session

import (
	"time"
)

type Type string

const (
	TypeWalking Type = "walking"
	TypeRunning Type = "running"
	TypeCycling Type = "cycling"
	TypeHiking  Type = "hiking"
	TypeWorkout Type = "workout"
	TypeOther   Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeWalking, TypeRunning, TypeCycling, TypeHiking, TypeWorkout, TypeOther:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Waypoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type Stats struct {
	Steps         int     `json:"steps"`
	Distance      float64 `json:"distance"` // meters
	Calories      int     `json:"calories"`
	AvgSpeed      float64 `json:"avgSpeed"` // km/h
	MaxSpeed      float64 `json:"maxSpeed"` // km/h
	ElevationGain float64 `json:"elevationGain"`
}

type Achievement struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	XPReward    int       `json:"xpReward"`
	CoinReward  int       `json:"coinReward"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

type Geofence struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	EnteredAt time.Time  `json:"enteredAt"`
	ExitedAt  *time.Time `json:"exitedAt,omitempty"`
	TimeSpent float64    `json:"timeSpent"` // minutes
}

// MissionContribution records what a completed session fed into a mission.
type MissionContribution struct {
	MissionID        string   `json:"missionId"`
	Steps            int      `json:"steps"`
	Distance         float64  `json:"distance"`
	ActiveTime       float64  `json:"activeTime"`
	LocationsVisited []string `json:"locationsVisited,omitempty"`
}

type Sustainability struct {
	TransportMode string  `json:"transportMode"`
	CarbonSaved   float64 `json:"carbonSaved"`
	IsEcoFriendly bool    `json:"isEcoFriendly"`
}

type Session struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	Type           Type                  `json:"type"`
	Status         Status                `json:"status"`
	StartTime      time.Time             `json:"startTime"`
	EndTime        *time.Time            `json:"endTime,omitempty"`
	Duration       float64               `json:"duration"` // minutes
	Stats          Stats                 `json:"stats"`
	StartLocation  *Location             `json:"startLocation,omitempty"`
	EndLocation    *Location             `json:"endLocation,omitempty"`
	Waypoints      []Waypoint            `json:"waypoints"`
	Achievements   []Achievement         `json:"achievements"`
	Missions       []MissionContribution `json:"missions,omitempty"`
	Geofences      []Geofence            `json:"geofences,omitempty"`
	Sustainability Sustainability        `json:"sustainability"`
	Notes          string                `json:"notes,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}

// Rewards is the base xp/coin payout for a finished session: 1 xp per 100 m,
// 1 xp per 5 active minutes, 1 coin per 10 xp.
func Rewards(s *Session) (xp, coins int) {
	xp = int(s.Stats.Distance/100) + int(s.Duration/5)
	coins = xp / 10
	return xp, coins
}
