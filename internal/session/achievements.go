package session

type achievementTier struct {
	kind        string
	name        string
	description string
	xp          int
	coins       int
}

var (
	firstKilometer    = achievementTier{"distance", "First Kilometer", "Completed your first 1km!", 50, 10}
	distanceWarrior   = achievementTier{"distance", "Distance Warrior", "Completed 5km in a single session!", 200, 50}
	halfHourHero      = achievementTier{"time", "Half Hour Hero", "Stayed active for 30 minutes!", 75, 15}
	enduranceChampion = achievementTier{"time", "Endurance Champion", "Stayed active for over an hour!", 150, 30}
	speedDemon        = achievementTier{"speed", "Speed Demon", "Reached 15+ km/h while running!", 100, 25}
)

// CheckAchievements evaluates one tier per axis (distance, time, speed) and
// replaces s.Achievements with the result.
func (r *Recorder) CheckAchievements(s *Session) []Achievement {
	var tiers []achievementTier

	switch {
	case s.Stats.Distance >= 5000:
		tiers = append(tiers, distanceWarrior)
	case s.Stats.Distance >= 1000:
		tiers = append(tiers, firstKilometer)
	}

	switch {
	case s.Duration >= 60:
		tiers = append(tiers, enduranceChampion)
	case s.Duration >= 30:
		tiers = append(tiers, halfHourHero)
	}

	if s.Stats.MaxSpeed >= 15 && s.Type == TypeRunning {
		tiers = append(tiers, speedDemon)
	}

	now := r.clock.Now()
	achievements := make([]Achievement, 0, len(tiers))
	for _, t := range tiers {
		achievements = append(achievements, Achievement{
			Type:        t.kind,
			Name:        t.name,
			Description: t.description,
			XPReward:    t.xp,
			CoinReward:  t.coins,
			UnlockedAt:  now,
		})
	}

	s.Achievements = achievements
	return achievements
}
