package mission

import (
	"encoding/json"
	"math"
	"slices"
)

type Progress struct {
	Steps            int      `json:"steps"`
	Distance         float64  `json:"distance"`
	ActiveTime       float64  `json:"activeTime"`
	LocationsVisited []string `json:"locationsVisited"`
	FriendsInvited   int      `json:"friendsInvited"`
	StreakDays       int      `json:"streakDays"`
	// Extension holds caller-defined progress keys.
	Extension map[string]json.RawMessage `json:"extension,omitempty"`
}

// ProgressDelta is an incoming progress report. Known fields are typed; any
// other key lands in Extension.
type ProgressDelta struct {
	Steps            *int                       `json:"steps,omitempty"`
	Distance         *float64                   `json:"distance,omitempty"`
	ActiveTime       *float64                   `json:"activeTime,omitempty"`
	LocationsVisited []string                   `json:"locationsVisited,omitempty"`
	FriendsInvited   *int                       `json:"friendsInvited,omitempty"`
	StreakDays       *int                       `json:"streakDays,omitempty"`
	Extension        map[string]json.RawMessage `json:"-"`
}

var knownDeltaKeys = []string{"steps", "distance", "activeTime", "locationsVisited", "friendsInvited", "streakDays"}

func (d *ProgressDelta) UnmarshalJSON(b []byte) error {
	type plain ProgressDelta
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range knownDeltaKeys {
		delete(raw, k)
	}

	*d = ProgressDelta(p)
	if len(raw) > 0 {
		d.Extension = raw
	}
	return nil
}

func (d ProgressDelta) MarshalJSON() ([]byte, error) {
	type plain ProgressDelta
	b, err := json.Marshal(plain(d))
	if err != nil || len(d.Extension) == 0 {
		return b, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range d.Extension {
		if _, known := out[k]; !known {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// apply merges d into p: numbers ratchet up, visited locations are unioned and
// non-numeric extension values are overwritten.
func (p *Progress) apply(d ProgressDelta) {
	if d.Steps != nil {
		p.Steps = max(p.Steps, *d.Steps)
	}
	if d.Distance != nil {
		p.Distance = math.Max(p.Distance, *d.Distance)
	}
	if d.ActiveTime != nil {
		p.ActiveTime = math.Max(p.ActiveTime, *d.ActiveTime)
	}
	if d.FriendsInvited != nil {
		p.FriendsInvited = max(p.FriendsInvited, *d.FriendsInvited)
	}
	if d.StreakDays != nil {
		p.StreakDays = max(p.StreakDays, *d.StreakDays)
	}
	for _, loc := range d.LocationsVisited {
		if !slices.Contains(p.LocationsVisited, loc) {
			p.LocationsVisited = append(p.LocationsVisited, loc)
		}
	}

	for k, incoming := range d.Extension {
		if p.Extension == nil {
			p.Extension = make(map[string]json.RawMessage)
		}
		p.Extension[k] = ratchetRaw(p.Extension[k], incoming)
	}
}

func ratchetRaw(existing, incoming json.RawMessage) json.RawMessage {
	in, ok := asNumber(incoming)
	if !ok {
		return incoming
	}
	if cur, ok := asNumber(existing); ok && cur >= in {
		return existing
	}
	return incoming
}

func asNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}
