package sustainability

type LogGreenTravelRequest struct {
	Distance      float64       `json:"distance"` // meters
	TransportMode TransportMode `json:"transportMode"`
	CarbonSaved   float64       `json:"carbonSaved,omitempty"`
}

type CleanupLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CleanupRequest struct {
	Location       *CleanupLocation `json:"location"`
	PhotoURL       string           `json:"photoUrl,omitempty"`
	Description    string           `json:"description,omitempty"`
	ItemsCollected int              `json:"itemsCollected,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard  []RankedUser `json:"leaderboard"`
	UserPosition *int         `json:"userPosition"`
	Type         Metric       `json:"type"`
}
