package leaderboard

import (
	"testing"
	"time"

	"gamifiedFitnessAPI/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC) // a Wednesday

func newUser(id string, xp int) *user.User {
	u := user.New(id, "clerk_"+id, id, id+"@example.com", "CODE"+id, t0)
	u.AddXP(xp)
	return u
}

func ranks(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Rank)
	}
	return out
}

func TestRebuild_RankSwap(t *testing.T) {
	u1 := newUser("u1", 500)
	u2 := newUser("u2", 1200)
	previous := []Entry{{UserID: "u2", Rank: 1}, {UserID: "u1", Rank: 2}}

	got := Rebuild(TypeWeekly, CategoryXP, []*user.User{u1, u2}, previous)

	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, ChangeUp, got[0].Change)
	require.NotNil(t, got[0].PreviousRank)
	assert.Equal(t, 2, *got[0].PreviousRank)

	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, ChangeDown, got[1].Change)
	assert.Equal(t, 1, *got[1].PreviousRank)
}

func TestRebuild_TrustsInputOrder(t *testing.T) {
	got := Rebuild(TypeWeekly, CategoryXP, []*user.User{newUser("low", 10), newUser("high", 9000)}, nil)
	assert.Equal(t, "low", got[0].UserID)
	assert.Equal(t, float64(10), got[0].Score)
}

func TestRebuild_SameAndNew(t *testing.T) {
	previous := []Entry{{UserID: "a", Rank: 1}}
	got := Rebuild(TypeWeekly, CategorySteps, []*user.User{newUser("a", 0), newUser("b", 0)}, previous)

	assert.Equal(t, ChangeSame, got[0].Change)
	assert.Equal(t, ChangeNew, got[1].Change)
	assert.Nil(t, got[1].PreviousRank)
}

func TestRebuild_Empty(t *testing.T) {
	assert.Empty(t, Rebuild(TypeWeekly, CategoryXP, nil, []Entry{{UserID: "gone", Rank: 1}}))
}

func TestRebuild_TypeDoesNotAffectScoring(t *testing.T) {
	users := []*user.User{newUser("high", 9000), newUser("low", 10)}
	previous := []Entry{{UserID: "low", Rank: 1}}

	weekly := Rebuild(TypeWeekly, CategoryXP, users, previous)
	for _, typ := range []Type{TypeDaily, TypeMonthly, TypeAllTime, TypeMissionSpecific} {
		assert.Equal(t, weekly, Rebuild(typ, CategoryXP, users, previous), "type %s", typ)
	}
	assert.Equal(t, ChangeDown, weekly[1].Change)
}

func TestRebuild_MetadataSnapshot(t *testing.T) {
	u := newUser("u1", 150)
	u.GameStats.TotalSteps = 4200
	u.SustainabilityStats.TreesPlanted = 2
	u.AddBadge(user.Badge{ID: "distance"})

	got := Rebuild(TypeWeekly, CategorySteps, []*user.User{u}, nil)
	u.GameStats.TotalSteps = 9999

	assert.Equal(t, float64(4200), got[0].Score)
	assert.Equal(t, Metadata{Steps: 4200, XP: 150, Level: 2, Badges: 1, TreesPlanted: 2}, got[0].Metadata)
}

func TestScoreFor(t *testing.T) {
	u := newUser("u1", 300)
	u.GameStats.TotalSteps = 1
	u.GameStats.TotalDistance = 2
	u.GameStats.TotalActiveTime = 3
	u.SustainabilityStats.EcoScore = 4
	u.GameStats.MissionsCompleted = 5

	assert.Equal(t, 1.0, ScoreFor(u, CategorySteps))
	assert.Equal(t, 2.0, ScoreFor(u, CategoryDistance))
	assert.Equal(t, 3.0, ScoreFor(u, CategoryActiveTime))
	assert.Equal(t, 4.0, ScoreFor(u, CategoryEcoScore))
	assert.Equal(t, 5.0, ScoreFor(u, CategoryMissionsCompleted))
	assert.Equal(t, 300.0, ScoreFor(u, CategoryXP))
	assert.Equal(t, 300.0, ScoreFor(u, Category("karma")))
}

func TestSortUsersByCategory_StableTies(t *testing.T) {
	users := []*user.User{newUser("a", 100), newUser("b", 300), newUser("c", 100), newUser("d", 300)}
	SortUsersByCategory(users, CategoryXP)

	ids := []string{}
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func boardOf(n int) *Leaderboard {
	users := make([]*user.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, newUser(string(rune('a'+i)), (n-i)*100))
	}
	lb := &Leaderboard{Type: TypeWeekly, Category: CategoryXP}
	lb.Update(users, t0)
	// Store out of order to check the views re-sort.
	lb.Entries[0], lb.Entries[n-1] = lb.Entries[n-1], lb.Entries[0]
	return lb
}

func TestTop(t *testing.T) {
	lb := boardOf(6)

	assert.Equal(t, []int{1, 2, 3}, ranks(lb.Top(3)))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ranks(lb.Top(50)))
	assert.Empty(t, lb.Top(0))
	assert.Equal(t, t0, lb.LastUpdated)
}

func TestAround(t *testing.T) {
	lb := boardOf(10)

	assert.Equal(t, []int{1, 2, 3, 4}, ranks(lb.Around("b", 2)))
	assert.Equal(t, []int{4, 5, 6, 7, 8}, ranks(lb.Around("f", 2)))
	assert.Equal(t, []int{9, 10}, ranks(lb.Around("j", 1)))
	assert.Empty(t, lb.Around("nobody", 5))
}

func TestPositionAndView(t *testing.T) {
	lb := boardOf(4)

	pos := lb.Position("c")
	require.NotNil(t, pos)
	assert.Equal(t, 3, pos.Rank)
	assert.Nil(t, lb.Position("zz"))

	v := lb.ViewFor("c", 2)
	assert.Equal(t, 4, v.TotalUsers)
	assert.Len(t, v.Entries, 2)
	assert.Equal(t, 3, v.UserPosition.Rank)
}

func TestPeriodFor(t *testing.T) {
	daily := PeriodFor(TypeDaily, t0)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), daily.StartDate)

	weekly := PeriodFor(TypeWeekly, t0)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), weekly.StartDate)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), weekly.EndDate)

	monthly := PeriodFor(TypeMonthly, t0)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), monthly.EndDate)

	assert.Nil(t, PeriodFor(TypeAllTime, t0))
}

func TestParse(t *testing.T) {
	_, err := ParseType("hourly")
	assert.Error(t, err)
	c, err := ParseCategory("eco_score")
	require.NoError(t, err)
	assert.Equal(t, CategoryEcoScore, c)
}
