package session

import "time"

type StartSessionRequest struct {
	Type          Type      `json:"type"`
	StartLocation *Location `json:"startLocation,omitempty"`
}

// AddWaypointsRequest accepts a single waypoint, a batch, or both. The single
// waypoint is appended first.
type AddWaypointsRequest struct {
	Waypoint  *Waypoint  `json:"waypoint,omitempty"`
	Waypoints []Waypoint `json:"waypoints,omitempty"`
}

func (r AddWaypointsRequest) All() []Waypoint {
	out := make([]Waypoint, 0, len(r.Waypoints)+1)
	if r.Waypoint != nil {
		out = append(out, *r.Waypoint)
	}
	return append(out, r.Waypoints...)
}

type StopSessionRequest struct {
	EndLocation *Location `json:"endLocation,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

type GeofenceEntryRequest struct {
	SessionID    string     `json:"sessionId"`
	GeofenceID   string     `json:"geofenceId"`
	GeofenceName string     `json:"geofenceName"`
	EntryTime    *time.Time `json:"entryTime,omitempty"`
}

type GeofenceExitRequest struct {
	SessionID  string     `json:"sessionId"`
	GeofenceID string     `json:"geofenceId"`
	ExitTime   *time.Time `json:"exitTime,omitempty"`
}

type SessionRewards struct {
	XP       int  `json:"xp"`
	Coins    int  `json:"coins"`
	LevelUp  bool `json:"levelUp"`
	NewLevel int  `json:"newLevel"`
}

type MissionUpdate struct {
	MissionID string `json:"missionId"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type StopSessionResponse struct {
	Session        *Session        `json:"session"`
	Achievements   []Achievement   `json:"achievements"`
	Rewards        SessionRewards  `json:"rewards"`
	MissionUpdates []MissionUpdate `json:"missionUpdates"`
}

type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type ListResponse struct {
	Sessions   []*Session `json:"sessions"`
	Pagination Pagination `json:"pagination"`
}
