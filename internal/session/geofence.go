package session

import (
	"errors"
	"time"
)

var (
	ErrGeofenceAlreadyEntered = errors.New("already inside this geofence")
	ErrGeofenceNotEntered     = errors.New("no active entry for this geofence")
)

// EnterGeofence opens an entry for geofence id at the given time (now when
// zero). A second entry while the first one is still open is rejected.
func (r *Recorder) EnterGeofence(s *Session, id, name string, at time.Time) (*Geofence, error) {
	if openGeofence(s, id) != nil {
		return nil, ErrGeofenceAlreadyEntered
	}
	if at.IsZero() {
		at = r.clock.Now()
	}
	s.Geofences = append(s.Geofences, Geofence{
		ID:        id,
		Name:      name,
		EnteredAt: at,
	})
	return &s.Geofences[len(s.Geofences)-1], nil
}

// ExitGeofence closes the open entry for id and returns the minutes spent inside.
func (r *Recorder) ExitGeofence(s *Session, id string, at time.Time) (float64, error) {
	g := openGeofence(s, id)
	if g == nil {
		return 0, ErrGeofenceNotEntered
	}
	if at.IsZero() {
		at = r.clock.Now()
	}
	g.ExitedAt = &at
	g.TimeSpent = at.Sub(g.EnteredAt).Minutes()
	return g.TimeSpent, nil
}

func openGeofence(s *Session, id string) *Geofence {
	for i := range s.Geofences {
		if s.Geofences[i].ID == id && s.Geofences[i].ExitedAt == nil {
			return &s.Geofences[i]
		}
	}
	return nil
}
