package session

import (
	"math"
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// latForMeters returns the latitude offset that spans d meters along a meridian.
func latForMeters(d float64) float64 {
	return d / (geo.EarthRadiusMeters * math.Pi / 180)
}

func newTestRecorder() (*Recorder, *clock.Fixed) {
	c := clock.NewFixed(t0)
	return NewRecorder(c, OrderTrust), c
}

func TestRecomputeStats_WalkingScenario(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", TypeWalking, nil)

	r.AppendWaypoint(s, Waypoint{Lat: 0, Lng: 0, Timestamp: t0})
	r.AppendWaypoint(s, Waypoint{Lat: latForMeters(600), Lng: 0, Timestamp: t0.Add(10 * time.Minute)})

	assert.InDelta(t, 600, s.Stats.Distance, 0.01)
	assert.InDelta(t, 10, s.Duration, 1e-9)
	assert.InDelta(t, 3.6, s.Stats.AvgSpeed, 1e-6)
	assert.InDelta(t, 3.6, s.Stats.MaxSpeed, 1e-6)
	assert.Equal(t, 857, s.Stats.Steps)
	assert.Equal(t, 41, s.Stats.Calories)
}

func TestRecomputeStats_FewerThanTwoWaypointsIsNoop(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", TypeRunning, nil)

	r.RecomputeStats(s)
	assert.Equal(t, Stats{}, s.Stats)

	r.AppendWaypoint(s, Waypoint{Lat: 1, Lng: 1, Timestamp: t0})
	assert.Equal(t, Stats{}, s.Stats)
	assert.Zero(t, s.Duration)
}

func TestRecomputeStats_DistanceIsSumOfSegments(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", TypeCycling, nil)

	points := []geo.Point{{Lat: 0, Lng: 0}, {Lat: 0.01, Lng: 0}, {Lat: 0.01, Lng: 0.01}, {Lat: 0.02, Lng: 0.015}}
	var want float64
	for i, p := range points {
		r.AppendWaypoint(s, Waypoint{Lat: p.Lat, Lng: p.Lng, Timestamp: t0.Add(time.Duration(i) * time.Minute)})
		if i > 0 {
			want += geo.Haversine(points[i-1], p)
		}
	}

	assert.InDelta(t, want, s.Stats.Distance, 1e-6)
	assert.Zero(t, s.Stats.Steps, "steps are only estimated for walking and running")
}

func TestRecomputeStats_OneDegreeLatitude(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", TypeHiking, nil)

	r.AppendWaypoint(s, Waypoint{Lat: 0, Lng: 0, Timestamp: t0})
	r.AppendWaypoint(s, Waypoint{Lat: 1, Lng: 0, Timestamp: t0.Add(time.Hour)})

	assert.InDelta(t, 111194.9, s.Stats.Distance, 1.0)
}

func TestRecomputeStats_ZeroTimeSegmentsSkippedForSpeed(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", TypeWalking, nil)

	r.AppendWaypoint(s, Waypoint{Lat: 0, Lng: 0, Timestamp: t0})
	r.AppendWaypoint(s, Waypoint{Lat: latForMeters(100), Lng: 0, Timestamp: t0})
	r.AppendWaypoint(s, Waypoint{Lat: latForMeters(700), Lng: 0, Timestamp: t0.Add(10 * time.Minute)})

	assert.InDelta(t, 700, s.Stats.Distance, 0.01)
	// Only the second segment has elapsed time: 600 m in 10 min.
	assert.InDelta(t, 3.6, s.Stats.AvgSpeed, 1e-6)
	assert.InDelta(t, 3.6, s.Stats.MaxSpeed, 1e-6)
}

func TestRecomputeStats_Idempotent(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", TypeRunning, nil)
	r.AppendWaypoint(s, Waypoint{Lat: 0, Lng: 0, Timestamp: t0})
	r.AppendWaypoint(s, Waypoint{Lat: latForMeters(2500), Lng: 0, Timestamp: t0.Add(12 * time.Minute)})

	first := s.Stats
	firstDuration := s.Duration
	r.RecomputeStats(s)
	r.RecomputeStats(s)

	assert.Equal(t, first, s.Stats)
	assert.Equal(t, firstDuration, s.Duration)
}

func TestAppendWaypoint_DefaultsTimestampToNow(t *testing.T) {
	r, c := newTestRecorder()
	s := r.Start("user-1", TypeWalking, nil)
	c.Advance(3 * time.Minute)

	r.AppendWaypoint(s, Waypoint{Lat: 1, Lng: 2})

	require.Len(t, s.Waypoints, 1)
	assert.Equal(t, t0.Add(3*time.Minute), s.Waypoints[0].Timestamp)
}

func TestAppendWaypoint_OrderPolicy(t *testing.T) {
	late := Waypoint{Lat: 0.02, Lng: 0, Timestamp: t0.Add(20 * time.Minute)}
	early := Waypoint{Lat: 0.01, Lng: 0, Timestamp: t0.Add(10 * time.Minute)}

	trusting := NewRecorder(clock.NewFixed(t0), OrderTrust)
	s1 := trusting.Start("u", TypeWalking, nil)
	trusting.AppendWaypoint(s1, late)
	trusting.AppendWaypoint(s1, early)
	assert.Equal(t, late.Timestamp, s1.Waypoints[0].Timestamp)

	sorting := NewRecorder(clock.NewFixed(t0), OrderSort)
	s2 := sorting.Start("u", TypeWalking, nil)
	sorting.AppendWaypoint(s2, late)
	sorting.AppendWaypoint(s2, early)
	assert.Equal(t, early.Timestamp, s2.Waypoints[0].Timestamp)
	assert.Greater(t, s2.Stats.AvgSpeed, 0.0)
}

func TestParseWaypointOrder(t *testing.T) {
	o, err := ParseWaypointOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderTrust, o)

	o, err = ParseWaypointOrder("sort")
	require.NoError(t, err)
	assert.Equal(t, OrderSort, o)

	_, err = ParseWaypointOrder("random")
	assert.Error(t, err)
}

func TestComplete_UsesWallClockDuration(t *testing.T) {
	r, c := newTestRecorder()
	s := r.Start("user-1", TypeWalking, nil)

	r.AppendWaypoint(s, Waypoint{Lat: 0, Lng: 0, Timestamp: t0.Add(5 * time.Minute)})
	r.AppendWaypoint(s, Waypoint{Lat: latForMeters(600), Lng: 0, Timestamp: t0.Add(15 * time.Minute)})
	assert.InDelta(t, 10, s.Duration, 1e-9, "live estimate ignores time before the first waypoint")

	c.Set(t0.Add(20 * time.Minute))
	r.Complete(s)

	assert.Equal(t, StatusCompleted, s.Status)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, t0.Add(20*time.Minute), *s.EndTime)
	assert.InDelta(t, 20, s.Duration, 1e-9)
	assert.InDelta(t, 600, s.Stats.Distance, 0.01)
	assert.Equal(t, 857, s.Stats.Steps)
	assert.Equal(t, 82, s.Stats.Calories)
}

func TestComplete_TwiceRestampsEndTime(t *testing.T) {
	r, c := newTestRecorder()
	s := r.Start("user-1", TypeWorkout, nil)

	c.Set(t0.Add(30 * time.Minute))
	r.Complete(s)
	assert.InDelta(t, 30, s.Duration, 1e-9)

	c.Set(t0.Add(45 * time.Minute))
	r.Complete(s)
	assert.InDelta(t, 45, s.Duration, 1e-9)
	assert.Equal(t, t0.Add(45*time.Minute), *s.EndTime)
}

func TestComplete_WithoutRouteKeepsZeroCalories(t *testing.T) {
	for _, n := range []int{0, 1} {
		r, c := newTestRecorder()
		s := r.Start("user-1", TypeWalking, nil)
		if n == 1 {
			r.AppendWaypoint(s, Waypoint{Lat: 0, Lng: 0, Timestamp: t0})
		}

		c.Set(t0.Add(60 * time.Minute))
		r.Complete(s)

		assert.InDelta(t, 60, s.Duration, 1e-9, "waypoints=%d", n)
		assert.Zero(t, s.Stats.Calories, "waypoints=%d", n)
		assert.Zero(t, s.Stats.Distance, "waypoints=%d", n)
		assert.Zero(t, s.Stats.Steps, "waypoints=%d", n)
	}
}

func TestDurations(t *testing.T) {
	assert.Zero(t, LiveDurationEstimate(nil))
	assert.Zero(t, FinalizedDuration(time.Time{}, t0))
	assert.InDelta(t, 90, FinalizedDuration(t0, t0.Add(90*time.Minute)), 1e-9)
}

func TestRewards(t *testing.T) {
	s := &Session{Duration: 27, Stats: Stats{Distance: 3450}}
	xp, coins := Rewards(s)
	assert.Equal(t, 34+5, xp)
	assert.Equal(t, 3, coins)
}

func TestStart_DefaultsInvalidType(t *testing.T) {
	r, _ := newTestRecorder()
	s := r.Start("user-1", Type("skydiving"), &Location{Lat: 1, Lng: 2})

	assert.Equal(t, TypeWalking, s.Type)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, t0, s.StartTime)
	assert.NotEmpty(t, s.ID)
}
