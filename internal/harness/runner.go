package harness

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/questlog/internal/catalog"
	"github.com/roach88/questlog/internal/engine"
	"github.com/roach88/questlog/internal/progress"
)

// FixedNow is the wall-clock instant every scenario runs at. A constant
// clock keeps unlock timestamps - and golden snapshots - byte-stable.
var FixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of running a scenario.
type Result struct {
	Final engine.GameState
}

// Run dispatches the scenario's steps against the initial state.
func Run(sc *Scenario) (*Result, error) {
	reducer := engine.NewReducer(
		catalog.Achievements(),
		catalog.TotalSections(),
		catalog.DefaultSection,
		engine.WithNow(func() time.Time { return FixedNow }),
	)

	state := reducer.InitialState()
	state.IsLoading = false

	for i, step := range sc.Steps {
		ev, err := step.Event()
		if err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", sc.Name, i, err)
		}
		state = reducer.Apply(state, ev)
	}

	return &Result{Final: state}, nil
}

// Snapshot renders the final progress in its storage-safe form, the same
// shape the envelope persists. Golden files hold exactly these bytes.
func (r *Result) Snapshot() ([]byte, error) {
	out, err := json.MarshalIndent(progress.Serialize(r.Final.Progress), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return append(out, '\n'), nil
}
