package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementNames(as []Achievement) []string {
	names := make([]string, 0, len(as))
	for _, a := range as {
		names = append(names, a.Name)
	}
	return names
}

func TestCheckAchievements_AllThreeAxes(t *testing.T) {
	r, _ := newTestRecorder()
	s := &Session{Type: TypeRunning, Duration: 45, Stats: Stats{Distance: 6000, MaxSpeed: 16}}

	got := r.CheckAchievements(s)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Distance Warrior", "Half Hour Hero", "Speed Demon"}, achievementNames(got))
	assert.Equal(t, 200, got[0].XPReward)
	assert.Equal(t, 50, got[0].CoinReward)
	assert.Equal(t, "time", got[1].Type)
	assert.Equal(t, t0, got[2].UnlockedAt)
}

func TestCheckAchievements_ReplacesPreviousList(t *testing.T) {
	r, _ := newTestRecorder()
	s := &Session{Type: TypeRunning, Duration: 45, Stats: Stats{Distance: 6000, MaxSpeed: 16}}

	r.CheckAchievements(s)
	r.CheckAchievements(s)

	assert.Len(t, s.Achievements, 3)
}

func TestCheckAchievements_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    []string
	}{
		{"nothing", Session{Type: TypeWalking, Duration: 29.9, Stats: Stats{Distance: 999}}, []string{}},
		{"first kilometer", Session{Type: TypeWalking, Stats: Stats{Distance: 1000}}, []string{"First Kilometer"}},
		{"just under five km", Session{Type: TypeWalking, Stats: Stats{Distance: 4999.9}}, []string{"First Kilometer"}},
		{"five km", Session{Type: TypeWalking, Stats: Stats{Distance: 5000}}, []string{"Distance Warrior"}},
		{"half hour", Session{Type: TypeWalking, Duration: 30}, []string{"Half Hour Hero"}},
		{"an hour", Session{Type: TypeWalking, Duration: 60}, []string{"Endurance Champion"}},
		{"fast cyclist gets no speed badge", Session{Type: TypeCycling, Stats: Stats{MaxSpeed: 30}}, []string{}},
		{"fast runner", Session{Type: TypeRunning, Stats: Stats{MaxSpeed: 15}}, []string{"Speed Demon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRecorder()
			s := tt.session
			assert.Equal(t, tt.want, achievementNames(r.CheckAchievements(&s)))
		})
	}
}

func TestGeofence_EnterExit(t *testing.T) {
	r, c := newTestRecorder()
	s := r.Start("user-1", TypeWalking, nil)

	g, err := r.EnterGeofence(s, "park", "City Park", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, t0, g.EnteredAt)

	_, err = r.EnterGeofence(s, "park", "City Park", time.Time{})
	assert.ErrorIs(t, err, ErrGeofenceAlreadyEntered)

	c.Advance(12 * time.Minute)
	spent, err := r.ExitGeofence(s, "park", time.Time{})
	require.NoError(t, err)
	assert.InDelta(t, 12, spent, 1e-9)

	_, err = r.ExitGeofence(s, "park", time.Time{})
	assert.ErrorIs(t, err, ErrGeofenceNotEntered)

	// A closed entry does not block a new visit.
	_, err = r.EnterGeofence(s, "park", "City Park", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, s.Geofences, 2)
}
