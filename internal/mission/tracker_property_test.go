package mission

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: whatever the order of updates, each counter ends at the largest
// value ever reported for it.
func TestProgressRatchet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("final progress is the max of all updates", prop.ForAll(
		func(steps []int, distances []float64) bool {
			m := New(Template{Name: "Ratchet", Requirements: Requirements{Steps: 1 << 30}}, "", true, t0)

			wantSteps, wantDistance := 0, 0.0
			for i := 0; i < len(steps) || i < len(distances); i++ {
				var d ProgressDelta
				if i < len(steps) {
					d.Steps = intp(steps[i])
					wantSteps = max(wantSteps, steps[i])
				}
				if i < len(distances) {
					d.Distance = floatp(distances[i])
					wantDistance = max(wantDistance, distances[i])
				}
				m.UpdateProgress("u1", d, t0)
			}

			p := m.Participants.Get("u1")
			if p == nil {
				return len(steps) == 0 && len(distances) == 0
			}
			return p.Progress.Steps == wantSteps && p.Progress.Distance == wantDistance
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
		gen.SliceOf(gen.Float64Range(0, 50000)),
	))

	properties.TestingRun(t)
}
