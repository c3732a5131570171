package session

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/geo"

	"github.com/google/uuid"
)

const (
	defaultBodyMassKg = 70.0
	avgStepLengthM    = 0.7
)

// WaypointOrder controls how appended waypoints are sequenced before stats
// are derived from them.
type WaypointOrder string

const (
	// OrderTrust keeps waypoints in call order.
	OrderTrust WaypointOrder = "trust"
	// OrderSort stable-sorts waypoints by timestamp after every append.
	OrderSort WaypointOrder = "sort"
)

func ParseWaypointOrder(s string) (WaypointOrder, error) {
	switch WaypointOrder(s) {
	case "", OrderTrust:
		return OrderTrust, nil
	case OrderSort:
		return OrderSort, nil
	}
	return "", fmt.Errorf("unknown waypoint order %q", s)
}

// Recorder turns a waypoint stream into session statistics.
type Recorder struct {
	clock      clock.Clock
	order      WaypointOrder
	bodyMassKg float64
}

func NewRecorder(c clock.Clock, order WaypointOrder) *Recorder {
	if order == "" {
		order = OrderTrust
	}
	return &Recorder{clock: c, order: order, bodyMassKg: defaultBodyMassKg}
}

// Start creates an active session with no waypoints.
func (r *Recorder) Start(userID string, t Type, start *Location) *Session {
	if !t.Valid() {
		t = TypeWalking
	}
	now := r.clock.Now()
	return &Session{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          t,
		Status:        StatusActive,
		StartTime:     now,
		StartLocation: start,
		Waypoints:     []Waypoint{},
		Achievements:  []Achievement{},
		Sustainability: Sustainability{
			TransportMode: transportModeFor(t),
			IsEcoFriendly: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func transportModeFor(t Type) string {
	if t == TypeCycling {
		return "cycling"
	}
	return "walking"
}

// AppendWaypoint adds wp to the route and recomputes stats. A zero timestamp
// is stamped with the current time.
func (r *Recorder) AppendWaypoint(s *Session, wp Waypoint) {
	if wp.Timestamp.IsZero() {
		wp.Timestamp = r.clock.Now()
	}
	s.Waypoints = append(s.Waypoints, wp)
	if r.order == OrderSort {
		slices.SortStableFunc(s.Waypoints, func(a, b Waypoint) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	}
	s.UpdatedAt = r.clock.Now()
	r.RecomputeStats(s)
}

// RecomputeStats derives distance, speeds, live duration, calories and steps
// from the waypoints. Sessions with fewer than two waypoints are left as is.
func (r *Recorder) RecomputeStats(s *Session) {
	if len(s.Waypoints) < 2 {
		return
	}

	var distance float64
	speeds := make([]float64, 0, len(s.Waypoints)-1)

	for i := 1; i < len(s.Waypoints); i++ {
		prev, curr := s.Waypoints[i-1], s.Waypoints[i]

		segment := geo.Haversine(
			geo.Point{Lat: prev.Lat, Lng: prev.Lng},
			geo.Point{Lat: curr.Lat, Lng: curr.Lng},
		)
		distance += segment

		minutes := curr.Timestamp.Sub(prev.Timestamp).Minutes()
		if minutes > 0 {
			speeds = append(speeds, (segment/1000)/(minutes/60))
		}
	}

	s.Stats.Distance = distance
	s.Duration = LiveDurationEstimate(s.Waypoints)
	s.Stats.AvgSpeed = mean(speeds)
	s.Stats.MaxSpeed = maxOf(speeds)
	s.Stats.Calories = r.calories(s.Type, s.Duration)

	if s.Type == TypeWalking || s.Type == TypeRunning {
		s.Stats.Steps = int(math.Round(distance / avgStepLengthM))
	}
}

// Complete closes the session. The persisted duration becomes the wall-clock
// time since StartTime; distance, speed and steps are re-derived from the
// waypoints and calories follow the finalized duration. A session without a
// route (fewer than two waypoints) keeps zero calories.
func (r *Recorder) Complete(s *Session) {
	end := r.clock.Now()
	s.Status = StatusCompleted
	s.EndTime = &end
	s.UpdatedAt = end

	r.RecomputeStats(s)

	s.Duration = FinalizedDuration(s.StartTime, end)
	if len(s.Waypoints) >= 2 {
		s.Stats.Calories = r.calories(s.Type, s.Duration)
	}
}

// Cancel abandons an active session without finalizing stats.
func (r *Recorder) Cancel(s *Session) {
	end := r.clock.Now()
	s.Status = StatusCancelled
	s.EndTime = &end
	s.UpdatedAt = end
}

// LiveDurationEstimate is the sum of gaps between consecutive waypoints in
// minutes. Time before the first waypoint is not counted.
func LiveDurationEstimate(wps []Waypoint) float64 {
	var total float64
	for i := 1; i < len(wps); i++ {
		total += wps[i].Timestamp.Sub(wps[i-1].Timestamp).Minutes()
	}
	return total
}

// FinalizedDuration is the wall-clock length of a session in minutes.
func FinalizedDuration(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start).Minutes()
}

func (r *Recorder) calories(t Type, minutes float64) int {
	return int(math.Round(met(t) * r.bodyMassKg * (minutes / 60)))
}

func met(t Type) float64 {
	switch t {
	case TypeRunning:
		return 8
	case TypeCycling:
		return 6
	default:
		return 3.5
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return slices.Max(xs)
}
