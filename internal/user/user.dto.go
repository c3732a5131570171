package user

type CreateUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

type UpdateProfileRequest struct {
	Username *string  `json:"username,omitempty"`
	ImageURL *string  `json:"imageUrl,omitempty"`
	Profile  *Profile `json:"profile,omitempty"`
	Avatar   *Avatar  `json:"avatar,omitempty"`
}

// Apply copies the set fields of req onto u.
func (req *UpdateProfileRequest) Apply(u *User) {
	if req.Username != nil && *req.Username != "" {
		u.Username = *req.Username
	}
	if req.ImageURL != nil {
		u.ImageURL = *req.ImageURL
	}
	if req.Profile != nil {
		u.Profile = *req.Profile
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
}

type TodayStats struct {
	Steps      int     `json:"steps"`
	Distance   float64 `json:"distance"`
	ActiveTime float64 `json:"activeTime"`
	Calories   int     `json:"calories"`
	Sessions   int     `json:"sessions"`
}

type DashboardResponse struct {
	User                *User         `json:"user"`
	TodayStats          TodayStats    `json:"todayStats"`
	ProgressToNextLevel LevelProgress `json:"progressToNextLevel"`
	ActiveMissions      int           `json:"activeMissions"`
}

type GameProfileResponse struct {
	Level               int                 `json:"level"`
	XP                  int                 `json:"xp"`
	Coins               int                 `json:"coins"`
	StreakDays          int                 `json:"streakDays"`
	Badges              []Badge             `json:"badges"`
	TotalSteps          int                 `json:"totalSteps"`
	TotalDistance       float64             `json:"totalDistance"`
	TotalActiveTime     float64             `json:"totalActiveTime"`
	SustainabilityStats SustainabilityStats `json:"sustainabilityStats"`
	ProgressToNextLevel LevelProgress       `json:"progressToNextLevel"`
}

func (u *User) GameProfile() GameProfileResponse {
	return GameProfileResponse{
		Level:               u.GameStats.Level,
		XP:                  u.GameStats.XP,
		Coins:               u.GameStats.Coins,
		StreakDays:          u.GameStats.StreakDays,
		Badges:              u.GameStats.Badges,
		TotalSteps:          u.GameStats.TotalSteps,
		TotalDistance:       u.GameStats.TotalDistance,
		TotalActiveTime:     u.GameStats.TotalActiveTime,
		SustainabilityStats: u.SustainabilityStats,
		ProgressToNextLevel: u.ProgressToNextLevel(),
	}
}

type CheckinResponse struct {
	Streak   int           `json:"streak"`
	Rewards  CheckinReward `json:"rewards"`
	XPResult XPResult      `json:"xpResult"`
}

type StatsResponse struct {
	GameStats           GameStats           `json:"gameStats"`
	SustainabilityStats SustainabilityStats `json:"sustainabilityStats"`
}

type FriendSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"imageUrl,omitempty"`
	Avatar   Avatar `json:"avatar"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Badges   int    `json:"badges"`
}

func (u *User) FriendSummary() FriendSummary {
	return FriendSummary{
		ID:       u.ID,
		Username: u.Username,
		ImageURL: u.ImageURL,
		Avatar:   u.Avatar,
		Level:    u.GameStats.Level,
		XP:       u.GameStats.XP,
		Badges:   len(u.GameStats.Badges),
	}
}

type AddFriendRequest struct {
	FriendCode string `json:"friendCode"`
}
