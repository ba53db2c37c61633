package poller

import (
	"time"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

// State is what a consumer displays. Snapshot is nil until the first
// successful poll of the current scope.
type State struct {
	Generation uint64
	Scope      string
	Snapshot   *domain.Snapshot
	Err        error
	UpdatedAt  time.Time
}

// Switch starts waiting for results of a new scope selection.
func (s State) Switch(gen uint64, scope string) State {
	return State{Generation: gen, Scope: scope}
}

func (s State) Loading() bool { return s.Snapshot == nil && s.Err == nil }

// Apply folds r into the state. Results of another generation are ignored. A
// failed poll keeps the last snapshot; a successful one replaces it whole.
func (s State) Apply(r Result) State {
	if r.Generation != s.Generation {
		return s
	}
	if r.Err != nil {
		s.Err = r.Err
		return s
	}
	snap := r.Snapshot
	s.Snapshot = &snap
	s.Err = nil
	s.UpdatedAt = r.At
	return s
}
