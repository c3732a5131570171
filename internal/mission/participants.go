package mission

import (
	"encoding/json"
	"time"
)

type ParticipantStatus string

const (
	ParticipantActive    ParticipantStatus = "active"
	ParticipantCompleted ParticipantStatus = "completed"
	ParticipantFailed    ParticipantStatus = "failed"
	ParticipantAbandoned ParticipantStatus = "abandoned"
)

type Participant struct {
	UserID      string            `json:"userId"`
	Progress    Progress          `json:"progress"`
	Status      ParticipantStatus `json:"status"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

func newParticipant(userID string, now time.Time) *Participant {
	return &Participant{
		UserID:    userID,
		Progress:  Progress{LocationsVisited: []string{}},
		Status:    ParticipantActive,
		StartedAt: now,
	}
}

// Participants keeps join order and indexes the first record per user. It
// serializes as a plain JSON array.
type Participants struct {
	list  []*Participant
	index map[string]int
}

func (ps *Participants) Get(userID string) *Participant {
	if i, ok := ps.index[userID]; ok {
		return ps.list[i]
	}
	return nil
}

// Add appends p unless the user already has a record.
func (ps *Participants) Add(p *Participant) bool {
	if ps.Get(p.UserID) != nil {
		return false
	}
	if ps.index == nil {
		ps.index = make(map[string]int)
	}
	ps.index[p.UserID] = len(ps.list)
	ps.list = append(ps.list, p)
	return true
}

func (ps *Participants) All() []*Participant {
	return ps.list
}

func (ps *Participants) Len() int {
	return len(ps.list)
}

func (ps *Participants) CountByStatus(status ParticipantStatus) int {
	n := 0
	for _, p := range ps.list {
		if p.Status == status {
			n++
		}
	}
	return n
}

func (ps Participants) MarshalJSON() ([]byte, error) {
	if ps.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(ps.list)
}

func (ps *Participants) UnmarshalJSON(b []byte) error {
	var list []*Participant
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}

	ps.list = list
	ps.index = make(map[string]int, len(list))
	for i, p := range list {
		if _, seen := ps.index[p.UserID]; !seen {
			ps.index[p.UserID] = i
		}
	}
	return nil
}
