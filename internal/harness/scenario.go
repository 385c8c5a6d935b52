// Package harness runs declarative reducer conformance scenarios.
//
// A scenario is a YAML file: a sequence of events dispatched against the
// initial state, plus expectations on the final state. The runner drives
// the reducer with a fixed clock so timestamps - and therefore golden
// snapshots - are fully deterministic.
package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/questlog/internal/engine"
)

// Scenario defines a conformance scenario for the progress reducer.
type Scenario struct {
	// Name uniquely identifies this scenario; its golden snapshot lives
	// under testdata/golden/<name>.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Steps are dispatched in order against the initial state.
	Steps []Step `yaml:"steps"`

	// Expect asserts on the final state. Unset fields are not checked.
	Expect Expectations `yaml:"expect"`
}

// Step is one dispatched event. Exactly one field must be set.
type Step struct {
	CompleteActivity *ActivityStep `yaml:"complete_activity,omitempty"`
	CompleteSection  *string       `yaml:"complete_section,omitempty"`
	Unlock           *string       `yaml:"unlock,omitempty"`
	SetSection       *string       `yaml:"set_section,omitempty"`
	ShowConfetti     *bool         `yaml:"show_confetti,omitempty"`
}

// ActivityStep carries the complete_activity payload.
type ActivityStep struct {
	ID     string `yaml:"id"`
	Points int    `yaml:"points"`
}

// Expectations asserts on the final state.
type Expectations struct {
	TotalScore          *int     `yaml:"total_score,omitempty"`
	StreakCount         *int     `yaml:"streak_count,omitempty"`
	CurrentSection      *string  `yaml:"current_section,omitempty"`
	CompletedSections   []string `yaml:"completed_sections,omitempty"`
	CompletedActivities []string `yaml:"completed_activities,omitempty"`
	Unlocked            []string `yaml:"unlocked,omitempty"`
	ShowConfetti        *bool    `yaml:"show_confetti,omitempty"`
}

// Event converts a step to its engine event.
func (s Step) Event() (engine.Event, error) {
	switch {
	case s.CompleteActivity != nil:
		return engine.CompleteActivity{
			ActivityID: s.CompleteActivity.ID,
			Points:     s.CompleteActivity.Points,
		}, nil
	case s.CompleteSection != nil:
		return engine.CompleteSection{SectionID: *s.CompleteSection}, nil
	case s.Unlock != nil:
		return engine.UnlockAchievement{AchievementID: *s.Unlock}, nil
	case s.SetSection != nil:
		return engine.SetCurrentSection{SectionID: *s.SetSection}, nil
	case s.ShowConfetti != nil:
		return engine.ShowConfetti{Visible: *s.ShowConfetti}, nil
	default:
		return nil, fmt.Errorf("step sets no event")
	}
}

// LoadScenario parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &sc, nil
}

// LoadScenarios parses every scenario under dir, sorted by filename.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	var out []*Scenario
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
