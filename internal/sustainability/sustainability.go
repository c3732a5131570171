package sustainability

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"gamifiedFitnessAPI/internal/user"
)

const (
	TreeCostMeters      = 5000.0
	carEmissionKgPerKm  = 0.21
	treeCarbonKgPerYear = 22.0
	carCarbonKgPerYear  = 4600.0
)

type TransportMode string

const (
	ModeWalking         TransportMode = "walking"
	ModeCycling         TransportMode = "cycling"
	ModePublicTransport TransportMode = "public_transport"
	ModeCar             TransportMode = "car"
)

var (
	ErrInsufficientGreenMiles = errors.New("not enough green miles to plant a tree")
	ErrNotEcoFriendly         = errors.New("transport mode is not eco-friendly")
)

func IsEcoFriendly(mode TransportMode) bool {
	switch mode {
	case ModeWalking, ModeCycling, ModePublicTransport:
		return true
	}
	return false
}

// CarbonSaved estimates kg of CO2 avoided versus driving the same distance.
func CarbonSaved(distanceMeters float64, mode TransportMode) float64 {
	var share float64
	switch mode {
	case ModeWalking, ModeCycling:
		share = 1
	case ModePublicTransport:
		share = 0.6
	default:
		return 0
	}
	return math.Round(carEmissionKgPerKm*distanceMeters/1000*share*100) / 100
}

// EcoPoints awards a point per 100 m, boosted for cycling and public transport.
func EcoPoints(distanceMeters float64, mode TransportMode) float64 {
	points := math.Floor(distanceMeters / 100)
	switch mode {
	case ModeCycling:
		points *= 1.5
	case ModePublicTransport:
		points *= 1.2
	}
	return points
}

type Rewards struct {
	XP       int         `json:"xp"`
	Coins    int         `json:"coins"`
	LevelUp  bool        `json:"levelUp"`
	NewLevel int         `json:"newLevel"`
	Badge    *user.Badge `json:"badge,omitempty"`
}

type TreeResult struct {
	TreesPlanted int     `json:"treesPlanted"`
	EcoScore     float64 `json:"ecoScore"`
	CarbonSaved  float64 `json:"carbonSaved"`
	Rewards      Rewards `json:"rewards"`
}

// PlantTree spends 5 km of green miles on a virtual tree.
func PlantTree(u *user.User) (*TreeResult, error) {
	s := &u.SustainabilityStats
	if s.GreenMiles < TreeCostMeters {
		return nil, fmt.Errorf("%w: need %.1fkm, have %.2fkm", ErrInsufficientGreenMiles, TreeCostMeters/1000, s.GreenMiles/1000)
	}

	s.TreesPlanted++
	s.GreenMiles -= TreeCostMeters
	s.EcoScore += 100
	s.CarbonSaved += treeCarbonKgPerYear

	xp := u.AddXP(50)
	u.AddCoins(25)

	return &TreeResult{
		TreesPlanted: s.TreesPlanted,
		EcoScore:     s.EcoScore,
		CarbonSaved:  s.CarbonSaved,
		Rewards:      Rewards{XP: 50, Coins: 25, LevelUp: xp.LeveledUp, NewLevel: xp.NewLevel},
	}, nil
}

type TravelResult struct {
	Distance        float64       `json:"distance"`
	TransportMode   TransportMode `json:"transportMode"`
	EcoPointsGained float64       `json:"ecoPointsGained"`
	TotalEcoScore   float64       `json:"totalEcoScore"`
	TotalGreenMiles float64       `json:"totalGreenMiles"`
	CarbonSaved     float64       `json:"carbonSaved"`
	Rewards         Rewards       `json:"rewards"`
}

// LogGreenTravel credits eco-friendly travel. carbonSaved overrides the
// estimate when positive.
func LogGreenTravel(u *user.User, distanceMeters float64, mode TransportMode, carbonSaved float64) (*TravelResult, error) {
	if !IsEcoFriendly(mode) {
		return nil, ErrNotEcoFriendly
	}

	s := &u.SustainabilityStats
	if carbonSaved <= 0 {
		carbonSaved = CarbonSaved(distanceMeters, mode)
	}
	points := EcoPoints(distanceMeters, mode)

	s.GreenMiles += distanceMeters
	s.CarbonSaved += carbonSaved
	s.EcoScore += points

	xpGained := int(distanceMeters / 500)
	xp := u.AddXP(xpGained)

	return &TravelResult{
		Distance:        distanceMeters,
		TransportMode:   mode,
		EcoPointsGained: points,
		TotalEcoScore:   s.EcoScore,
		TotalGreenMiles: s.GreenMiles,
		CarbonSaved:     s.CarbonSaved,
		Rewards:         Rewards{XP: xpGained, LevelUp: xp.LeveledUp, NewLevel: xp.NewLevel},
	}, nil
}

type CleanupResult struct {
	CleanupMissions int     `json:"cleanupMissions"`
	EcoScore        float64 `json:"ecoScore"`
	Rewards         Rewards `json:"rewards"`
}

var cleanupBadges = map[int]user.Badge{
	1:  {ID: "first_cleanup", Name: "Eco Warrior", Description: "Completed first cleanup mission", Icon: "♻️"},
	10: {ID: "cleanup_champion", Name: "Cleanup Champion", Description: "Completed 10 cleanup missions", Icon: "🌟"},
}

// RecordCleanup credits a litter cleanup and unlocks the 1st and 10th badges.
func RecordCleanup(u *user.User, now time.Time) *CleanupResult {
	s := &u.SustainabilityStats
	s.CleanupMissions++
	s.EcoScore += 200
	s.CarbonSaved += 5

	xp := u.AddXP(100)
	u.AddCoins(50)

	res := &CleanupResult{
		CleanupMissions: s.CleanupMissions,
		EcoScore:        s.EcoScore,
		Rewards:         Rewards{XP: 100, Coins: 50, LevelUp: xp.LeveledUp, NewLevel: xp.NewLevel},
	}

	if b, ok := cleanupBadges[s.CleanupMissions]; ok {
		b.UnlockedAt = now
		if u.AddBadge(b) {
			res.Rewards.Badge = &b
		}
	}
	return res
}

type Impact struct {
	TreesEquivalent     int `json:"treesEquivalent"`
	CarsOffRoad         int `json:"carsOffRoad"`
	PlasticBottlesSaved int `json:"plasticBottlesSaved"`
}

type Summary struct {
	user.SustainabilityStats
	GreenMilesKm float64 `json:"greenMilesKm"`
	CanPlantTree bool    `json:"canPlantTree"`
	NextTreeAt   float64 `json:"nextTreeAt"`
	EcoLevel     int     `json:"ecoLevel"`
	Impact       Impact  `json:"impact"`
}

func Summarize(s user.SustainabilityStats) Summary {
	return Summary{
		SustainabilityStats: s,
		GreenMilesKm:        math.Round(s.GreenMiles/1000*100) / 100,
		CanPlantTree:        s.GreenMiles >= TreeCostMeters,
		NextTreeAt:          TreeCostMeters - math.Mod(s.GreenMiles, TreeCostMeters),
		EcoLevel:            int(math.Floor(s.EcoScore/1000)) + 1,
		Impact: Impact{
			TreesEquivalent:     int(math.Floor(s.CarbonSaved / treeCarbonKgPerYear)),
			CarsOffRoad:         int(math.Floor(s.CarbonSaved / carCarbonKgPerYear)),
			PlasticBottlesSaved: s.CleanupMissions * 10,
		},
	}
}

type Metric string

const (
	MetricEcoScore   Metric = "ecoScore"
	MetricTrees      Metric = "trees"
	MetricGreenMiles Metric = "greenMiles"
	MetricCleanup    Metric = "cleanup"
)

func (m Metric) score(s user.SustainabilityStats) float64 {
	switch m {
	case MetricTrees:
		return float64(s.TreesPlanted)
	case MetricGreenMiles:
		return math.Round(s.GreenMiles / 1000)
	case MetricCleanup:
		return float64(s.CleanupMissions)
	default:
		return s.EcoScore
	}
}

type RankedUser struct {
	Rank     int                      `json:"rank"`
	UserID   string                   `json:"userId"`
	Username string                   `json:"username"`
	Avatar   user.Avatar              `json:"avatar"`
	Stats    user.SustainabilityStats `json:"stats"`
	Score    float64                  `json:"score"`
}

// Rank orders users by metric, descending, and keeps the first limit.
func Rank(users []*user.User, metric Metric, limit int) []RankedUser {
	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b *user.User) int {
		sa, sb := rawScore(metric, a), rawScore(metric, b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]RankedUser, 0, len(sorted))
	for i, u := range sorted {
		out = append(out, RankedUser{
			Rank:     i + 1,
			UserID:   u.ID,
			Username: u.Username,
			Avatar:   u.Avatar,
			Stats:    u.SustainabilityStats,
			Score:    metric.score(u.SustainabilityStats),
		})
	}
	return out
}

// rawScore sorts green miles by meters; the reported score is rounded km.
func rawScore(m Metric, u *user.User) float64 {
	if m == MetricGreenMiles {
		return u.SustainabilityStats.GreenMiles
	}
	return m.score(u.SustainabilityStats)
}
