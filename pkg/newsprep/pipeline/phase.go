package pipeline

import "time"

// Phase is one step of a run:
// init → reading → extracting → tokenizing → filtering → stemming → (writing) → done | next chunk
type Phase int

const (
	PhaseInit Phase = iota
	PhaseReading
	PhaseExtracting
	PhaseTokenizing
	PhaseFiltering
	PhaseStemming
	PhaseWriting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseReading:
		return "reading"
	case PhaseExtracting:
		return "extracting"
	case PhaseTokenizing:
		return "tokenizing"
	case PhaseFiltering:
		return "filtering"
	case PhaseStemming:
		return "stemming"
	case PhaseWriting:
		return "writing"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Phases lists the timed phases in execution order.
func Phases() []Phase {
	return []Phase{PhaseReading, PhaseExtracting, PhaseTokenizing, PhaseFiltering, PhaseStemming, PhaseWriting}
}

// Timings accumulates wall time per phase.
type Timings map[Phase]time.Duration

func (t Timings) record(p Phase, since time.Time) {
	t[p] += time.Since(since)
}

// Add sums other into t.
func (t Timings) Add(other Timings) {
	for p, d := range other {
		t[p] += d
	}
}

// Total returns the summed time across phases.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, d := range t {
		total += d
	}
	return total
}
