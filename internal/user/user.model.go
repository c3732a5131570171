package user

import (
	"time"
)

const StartingCoins = 100

type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

type GameStats struct {
	Level             int        `json:"level"`
	XP                int        `json:"xp"`
	Coins             int        `json:"coins"`
	StreakDays        int        `json:"streakDays"`
	LastActiveDate    time.Time  `json:"lastActiveDate"`
	TotalSteps        int        `json:"totalSteps"`
	TotalDistance     float64    `json:"totalDistance"`   // meters
	TotalActiveTime   float64    `json:"totalActiveTime"` // minutes
	MissionsCompleted int        `json:"missionsCompleted"`
	LastCheckin       *time.Time `json:"lastCheckin,omitempty"`
	Badges            []Badge    `json:"badges"`
}

type SustainabilityStats struct {
	TreesPlanted    int     `json:"treesPlanted"`
	GreenMiles      float64 `json:"greenMiles"` // meters of eco-friendly travel
	EcoScore        float64 `json:"ecoScore"`
	CarbonSaved     float64 `json:"carbonSaved"` // kg CO2
	CleanupMissions int     `json:"cleanupMissions"`
}

type Profile struct {
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	Age          int      `json:"age,omitempty"`
	Height       float64  `json:"height,omitempty"` // cm
	Weight       float64  `json:"weight,omitempty"` // kg
	FitnessLevel string   `json:"fitnessLevel"`
	Goals        []string `json:"goals,omitempty"`
}

type Avatar struct {
	Model       string   `json:"model"`
	Color       string   `json:"color"`
	Accessories []string `json:"accessories,omitempty"`
}

type SocialStats struct {
	Friends       []string `json:"friends"`
	FriendCode    string   `json:"friendCode"`
	PublicProfile bool     `json:"publicProfile"`
}

type User struct {
	ID                  string              `json:"id"`
	ClerkID             string              `json:"clerkId"`
	Email               string              `json:"email"`
	Username            string              `json:"username"`
	ImageURL            string              `json:"imageUrl,omitempty"`
	Profile             Profile             `json:"profile"`
	GameStats           GameStats           `json:"gameStats"`
	SustainabilityStats SustainabilityStats `json:"sustainabilityStats"`
	Avatar              Avatar              `json:"avatar"`
	SocialStats         SocialStats         `json:"socialStats"`
	DeviceTokens        []string            `json:"deviceTokens,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// New builds a level-1 user with the starting coin balance.
func New(id, clerkID, username, email, friendCode string, now time.Time) *User {
	return &User{
		ID:       id,
		ClerkID:  clerkID,
		Username: username,
		Email:    email,
		Profile:  Profile{FitnessLevel: "beginner"},
		GameStats: GameStats{
			Level:          1,
			Coins:          StartingCoins,
			LastActiveDate: now,
			Badges:         []Badge{},
		},
		Avatar: Avatar{Model: "default", Color: "#3B82F6"},
		SocialStats: SocialStats{
			Friends:       []string{},
			FriendCode:    friendCode,
			PublicProfile: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type PublicProfile struct {
	ID                  string              `json:"id"`
	Username            string              `json:"username"`
	ImageURL            string              `json:"imageUrl,omitempty"`
	Avatar              Avatar              `json:"avatar"`
	Level               int                 `json:"level"`
	XP                  int                 `json:"xp"`
	Badges              []Badge             `json:"badges"`
	SustainabilityStats SustainabilityStats `json:"sustainabilityStats"`
}

func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:                  u.ID,
		Username:            u.Username,
		ImageURL:            u.ImageURL,
		Avatar:              u.Avatar,
		Level:               u.GameStats.Level,
		XP:                  u.GameStats.XP,
		Badges:              u.GameStats.Badges,
		SustainabilityStats: u.SustainabilityStats,
	}
}

func (u *User) HasFriend(id string) bool {
	for _, f := range u.SocialStats.Friends {
		if f == id {
			return true
		}
	}
	return false
}

func (u *User) AddFriend(id string) bool {
	if u.HasFriend(id) {
		return false
	}
	u.SocialStats.Friends = append(u.SocialStats.Friends, id)
	return true
}

func (u *User) RemoveFriend(id string) bool {
	for i, f := range u.SocialStats.Friends {
		if f == id {
			u.SocialStats.Friends = append(u.SocialStats.Friends[:i], u.SocialStats.Friends[i+1:]...)
			return true
		}
	}
	return false
}

// AddDeviceToken registers a push token once.
func (u *User) AddDeviceToken(token string) bool {
	for _, t := range u.DeviceTokens {
		if t == token {
			return false
		}
	}
	u.DeviceTokens = append(u.DeviceTokens, token)
	return true
}
