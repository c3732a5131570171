package mission

import (
	"math"
	"slices"
	"time"

	"gamifiedFitnessAPI/internal/clock"
)

// CompletionPercentage averages min(progress/requirement, 1) over the present
// requirement dimensions and scales it to 0-100. StreakDays is not part of it.
func (m *Mission) CompletionPercentage(userID string) float64 {
	p := m.Participants.Get(userID)
	if p == nil {
		return 0
	}

	req := m.Requirements
	prog := p.Progress
	var total float64
	var dims int

	if req.Steps != 0 {
		total += ratio(float64(prog.Steps), float64(req.Steps))
		dims++
	}
	if req.Distance != 0 {
		total += ratio(prog.Distance, req.Distance)
		dims++
	}
	if req.ActiveTime != 0 {
		total += ratio(prog.ActiveTime, req.ActiveTime)
		dims++
	}
	if len(req.Locations) > 0 {
		total += ratio(float64(len(prog.LocationsVisited)), float64(len(req.Locations)))
		dims++
	}
	if req.Friends != 0 {
		total += ratio(float64(prog.FriendsInvited), float64(req.Friends))
		dims++
	}

	if dims == 0 {
		return 0
	}
	return total / float64(dims) * 100
}

func ratio(progress, requirement float64) float64 {
	return math.Min(progress/requirement, 1)
}

// IsCompleted requires every present dimension, StreakDays included, to be met.
func (m *Mission) IsCompleted(userID string) bool {
	p := m.Participants.Get(userID)
	if p == nil {
		return false
	}

	req := m.Requirements
	prog := p.Progress

	switch {
	case req.Steps != 0 && prog.Steps < req.Steps:
		return false
	case req.Distance != 0 && prog.Distance < req.Distance:
		return false
	case req.ActiveTime != 0 && prog.ActiveTime < req.ActiveTime:
		return false
	case len(req.Locations) > 0 && len(prog.LocationsVisited) < len(req.Locations):
		return false
	case req.Friends != 0 && prog.FriendsInvited < req.Friends:
		return false
	case req.StreakDays != 0 && prog.StreakDays < req.StreakDays:
		return false
	}
	return true
}

// UpdateProgress applies d to the user's participant record, creating it on
// first contact. An active participant whose requirements are now met is
// completed at now. The returned bool reports that transition.
func (m *Mission) UpdateProgress(userID string, d ProgressDelta, now time.Time) (*Participant, bool) {
	p := m.Participants.Get(userID)
	if p == nil {
		p = newParticipant(userID, now)
		m.Participants.Add(p)
	}

	p.Progress.apply(d)
	m.UpdatedAt = now

	if p.Status == ParticipantActive && m.IsCompleted(userID) {
		p.Status = ParticipantCompleted
		p.CompletedAt = &now
		m.RefreshMetadata()
		return p, true
	}
	return p, false
}

// Join adds an active participant with zero progress.
func (m *Mission) Join(userID string, now time.Time) (*Participant, error) {
	if m.Participants.Get(userID) != nil {
		return nil, ErrAlreadyParticipating
	}
	if m.IsExpired(now) {
		return nil, ErrMissionExpired
	}

	p := newParticipant(userID, now)
	m.Participants.Add(p)
	m.Metadata.TotalParticipants++
	m.UpdatedAt = now
	return p, nil
}

// MarkCompleted is the explicit completion path: the participant must be
// active and meet every requirement.
func (m *Mission) MarkCompleted(userID string, now time.Time) (*Participant, error) {
	p := m.Participants.Get(userID)
	if p == nil || p.Status != ParticipantActive {
		return nil, ErrNotParticipating
	}
	if !m.IsCompleted(userID) {
		return nil, ErrRequirementsNotMet
	}

	p.Status = ParticipantCompleted
	p.CompletedAt = &now
	m.UpdatedAt = now
	m.RefreshMetadata()
	return p, nil
}

// RefreshMetadata recomputes the completion rate and the average time to
// complete in hours.
func (m *Mission) RefreshMetadata() {
	var completed int
	var totalHours float64
	for _, p := range m.Participants.All() {
		if p.Status != ParticipantCompleted || p.CompletedAt == nil {
			continue
		}
		completed++
		totalHours += p.CompletedAt.Sub(p.StartedAt).Hours()
	}

	// Participants created by progress reports never went through Join.
	denominator := max(m.Metadata.TotalParticipants, m.Participants.Len())
	if denominator > 0 {
		m.Metadata.CompletionRate = float64(completed) / float64(denominator) * 100
	}
	if completed > 0 {
		m.Metadata.AverageCompletionTime = totalHours / float64(completed)
	}
}

type LeaderboardEntry struct {
	UserID               string            `json:"userId"`
	Progress             Progress          `json:"progress"`
	Status               ParticipantStatus `json:"status"`
	CompletionPercentage float64           `json:"completionPercentage"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty"`
}

// Leaderboard ranks non-abandoned participants: completed first by earliest
// completion, then the rest by descending completion percentage.
func (m *Mission) Leaderboard() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, m.Participants.Len())
	for _, p := range m.Participants.All() {
		if p.Status == ParticipantAbandoned {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:               p.UserID,
			Progress:             p.Progress,
			Status:               p.Status,
			CompletionPercentage: m.CompletionPercentage(p.UserID),
			CompletedAt:          p.CompletedAt,
		})
	}

	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		aDone := a.Status == ParticipantCompleted
		bDone := b.Status == ParticipantCompleted
		switch {
		case aDone && !bDone:
			return -1
		case bDone && !aDone:
			return 1
		case aDone && bDone:
			return completedAt(a).Compare(completedAt(b))
		}
		switch {
		case a.CompletionPercentage > b.CompletionPercentage:
			return -1
		case a.CompletionPercentage < b.CompletionPercentage:
			return 1
		}
		return 0
	})
	return entries
}

func completedAt(e LeaderboardEntry) time.Time {
	if e.CompletedAt == nil {
		return time.Time{}
	}
	return *e.CompletedAt
}

// Tracker stamps mission transitions with an injected clock.
type Tracker struct {
	clock clock.Clock
}

func NewTracker(c clock.Clock) *Tracker {
	return &Tracker{clock: c}
}

func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}

func (t *Tracker) UpdateProgress(m *Mission, userID string, d ProgressDelta) (*Participant, bool) {
	return m.UpdateProgress(userID, d, t.clock.Now())
}

func (t *Tracker) Join(m *Mission, userID string) (*Participant, error) {
	return m.Join(userID, t.clock.Now())
}

func (t *Tracker) Complete(m *Mission, userID string) (*Participant, error) {
	return m.MarkCompleted(userID, t.clock.Now())
}

func (t *Tracker) New(tmpl Template, createdBy string, global bool) *Mission {
	return New(tmpl, createdBy, global, t.clock.Now())
}
