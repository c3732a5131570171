package leaderboard

import (
	"slices"
	"time"

	"gamifiedFitnessAPI/internal/user"
)

// Rebuild ranks users in the order given: the caller sorts them by score.
// Each entry's change is derived from its rank in previous. The board type
// names which board is being rebuilt; scores depend on category alone.
func Rebuild(t Type, category Category, users []*user.User, previous []Entry) []Entry {
	prevRank := make(map[string]int, len(previous))
	for _, e := range previous {
		if _, ok := prevRank[e.UserID]; !ok {
			prevRank[e.UserID] = e.Rank
		}
	}

	entries := make([]Entry, 0, len(users))
	for i, u := range users {
		rank := i + 1
		e := Entry{
			UserID:   u.ID,
			Username: u.Username,
			ImageURL: u.ImageURL,
			Rank:     rank,
			Score:    ScoreFor(u, category),
			Metadata: snapshot(u),
			Change:   ChangeNew,
		}

		if pr, ok := prevRank[u.ID]; ok {
			e.PreviousRank = &pr
			switch {
			case rank < pr:
				e.Change = ChangeUp
			case rank > pr:
				e.Change = ChangeDown
			default:
				e.Change = ChangeSame
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// Update replaces the entries wholesale from users.
func (lb *Leaderboard) Update(users []*user.User, now time.Time) {
	lb.Entries = Rebuild(lb.Type, lb.Category, users, lb.Entries)
	lb.LastUpdated = now
}

// ScoreFor picks the ranked value for category. Unknown categories score by xp.
func ScoreFor(u *user.User, category Category) float64 {
	switch category {
	case CategorySteps:
		return float64(u.GameStats.TotalSteps)
	case CategoryDistance:
		return u.GameStats.TotalDistance
	case CategoryActiveTime:
		return u.GameStats.TotalActiveTime
	case CategoryEcoScore:
		return u.SustainabilityStats.EcoScore
	case CategoryMissionsCompleted:
		return float64(u.GameStats.MissionsCompleted)
	default:
		return float64(u.GameStats.XP)
	}
}

// SortUsersByCategory orders users by descending score; ties keep input order.
func SortUsersByCategory(users []*user.User, category Category) {
	slices.SortStableFunc(users, func(a, b *user.User) int {
		sa, sb := ScoreFor(a, category), ScoreFor(b, category)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
}

func snapshot(u *user.User) Metadata {
	return Metadata{
		Steps:             u.GameStats.TotalSteps,
		Distance:          u.GameStats.TotalDistance,
		ActiveTime:        u.GameStats.TotalActiveTime,
		XP:                u.GameStats.XP,
		Level:             u.GameStats.Level,
		Badges:            len(u.GameStats.Badges),
		TreesPlanted:      u.SustainabilityStats.TreesPlanted,
		MissionsCompleted: u.GameStats.MissionsCompleted,
		StreakDays:        u.GameStats.StreakDays,
	}
}

// Top returns the first n entries by rank. The stored order is not trusted.
func (lb *Leaderboard) Top(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	sorted := lb.byRank()
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func (lb *Leaderboard) Position(userID string) *Entry {
	for i := range lb.Entries {
		if lb.Entries[i].UserID == userID {
			e := lb.Entries[i]
			return &e
		}
	}
	return nil
}

// Around returns entries ranked within rng of the user, inclusive, or nothing
// when the user is not on the board.
func (lb *Leaderboard) Around(userID string, rng int) []Entry {
	me := lb.Position(userID)
	if me == nil {
		return []Entry{}
	}

	lo := max(1, me.Rank-rng)
	hi := me.Rank + rng

	out := []Entry{}
	for _, e := range lb.byRank() {
		if e.Rank >= lo && e.Rank <= hi {
			out = append(out, e)
		}
	}
	return out
}

func (lb *Leaderboard) byRank() []Entry {
	sorted := slices.Clone(lb.Entries)
	if sorted == nil {
		sorted = []Entry{}
	}
	slices.SortStableFunc(sorted, func(a, b Entry) int { return a.Rank - b.Rank })
	return sorted
}
