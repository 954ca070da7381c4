package pipeline

import "fmt"

// Stage is the observable progress of one analysis run. Transitions
// are validated; the run owner is the only writer.
type Stage string

const (
	StageIdle           Stage = "idle"
	StageLoading        Stage = "loading"
	StageRecommending   Stage = "recommending"
	StageDerivingFields Stage = "deriving_fields"
	StageReranking      Stage = "reranking"
	StageReady          Stage = "ready"
	StageError          Stage = "error"
)

// transitions maps each stage to its legal successors. The deriving and
// reranking stages are optional and may be skipped; error is reachable
// from anywhere.
var transitions = map[Stage][]Stage{
	StageIdle:           {StageLoading},
	StageLoading:        {StageRecommending},
	StageRecommending:   {StageDerivingFields, StageReranking, StageReady},
	StageDerivingFields: {StageReranking, StageReady},
	StageReranking:      {StageReady},
	StageReady:          {StageLoading},
	StageError:          {StageLoading},
}

// CanTransition reports whether from -> to is a legal stage move
func CanTransition(from, to Stage) bool {
	if to == StageError {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StageObserver is notified on every stage change of the current run.
// Called synchronously; observers must not block.
type StageObserver func(runKey string, stage Stage, errMessage string)

// advance moves the run's stage, enforcing legality. An illegal move
// indicates a programming error and is surfaced instead of silently
// corrupting the machine.
func (r *runState) advance(to Stage) error {
	if !CanTransition(r.stage, to) {
		return fmt.Errorf("illegal stage transition %s -> %s", r.stage, to)
	}
	r.stage = to
	return nil
}
