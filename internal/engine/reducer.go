package engine

import (
	"time"

	"github.com/roach88/questlog/internal/progress"
)

// Reducer is the pure transition function over GameState. It owns every
// business rule: points, streaks, achievement triggers, dedup.
//
// Apply never mutates its input and performs no I/O. Wall time enters only
// through the injected now function, so tests run against a fixed clock.
//
// INVARIANTS:
//   - All transitions are monotonic with respect to progress: no event
//     removes a completed id, decreases the score, or re-locks an
//     achievement.
//   - The achievements list always carries exactly the catalog's id set.
type Reducer struct {
	catalog        []progress.Achievement
	totalSections  int
	defaultSection string
	now            func() time.Time
}

// ReducerOption configures a Reducer.
type ReducerOption func(*Reducer)

// WithNow overrides the wall-time source. Tests use a fixed clock for
// deterministic timestamps.
func WithNow(now func() time.Time) ReducerOption {
	return func(r *Reducer) {
		r.now = now
	}
}

// NewReducer builds a reducer over the given achievement catalog.
// totalSections is the completionist threshold; defaultSection is where a
// fresh or repaired progress record points.
//
// The catalog slice is copied so later external mutation cannot reach the
// reducer's ground truth.
func NewReducer(catalog []progress.Achievement, totalSections int, defaultSection string, opts ...ReducerOption) *Reducer {
	cat := make([]progress.Achievement, len(catalog))
	for i, a := range catalog {
		cat[i] = a.Clone()
	}
	r := &Reducer{
		catalog:        cat,
		totalSections:  totalSections,
		defaultSection: defaultSection,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InitialState is the state of a fresh install: default section, zero
// score, every catalog achievement locked, loading until the first storage
// read completes.
func (r *Reducer) InitialState() GameState {
	return GameState{
		Progress: progress.UserProgress{
			CurrentSection:      r.defaultSection,
			CompletedSections:   []string{},
			CompletedActivities: []string{},
			Achievements:        progress.MergeAchievements(r.catalog, nil),
		},
		IsLoading: true,
	}
}

// Apply computes the next state for an event. Identity for events that
// would not change anything (duplicate completions, unknown achievement
// ids), so callers can compare pointers-free equality cheaply.
func (r *Reducer) Apply(state GameState, ev Event) GameState {
	switch e := ev.(type) {
	case CompleteActivity:
		return r.applyCompleteActivity(state, e)
	case CompleteSection:
		return r.applyCompleteSection(state, e)
	case UnlockAchievement:
		return r.applyUnlockAchievement(state, e)
	case ShowConfetti:
		state.ShowConfetti = e.Visible
		return state
	case SetCurrentSection:
		next := state.Progress.Clone()
		next.CurrentSection = e.SectionID
		state.Progress = next
		return state
	case LoadProgress:
		state.Progress = r.repair(e.Progress)
		return state
	case SetStorageError:
		state.StorageError = e.Message
		return state
	default:
		return state
	}
}

func (r *Reducer) applyCompleteActivity(state GameState, e CompleteActivity) GameState {
	if state.Progress.HasActivity(e.ActivityID) {
		return state
	}

	points := e.Points
	if points < 0 {
		// The score is a ratchet; a hostile or buggy caller cannot use a
		// completion to shrink it.
		points = 0
	}

	next := state.Progress.Clone()
	next.CompletedActivities = append(next.CompletedActivities, e.ActivityID)
	next.TotalScore += points
	next.StreakCount++
	now := r.now()
	next.LastActivityDate = &now

	if len(next.CompletedActivities) == 1 {
		unlockInPlace(&next, firstStepsID, now)
	}

	state.Progress = next
	state.ShowConfetti = true
	return state
}

func (r *Reducer) applyCompleteSection(state GameState, e CompleteSection) GameState {
	if state.Progress.HasSection(e.SectionID) {
		return state
	}

	next := state.Progress.Clone()
	next.CompletedSections = append(next.CompletedSections, e.SectionID)

	if len(next.CompletedSections) == r.totalSections {
		unlockInPlace(&next, completionistID, r.now())
	}

	state.Progress = next
	state.ShowConfetti = true
	return state
}

func (r *Reducer) applyUnlockAchievement(state GameState, e UnlockAchievement) GameState {
	existing := state.Progress.AchievementByID(e.AchievementID)
	if existing == nil || existing.Unlocked {
		return state
	}

	next := state.Progress.Clone()
	unlockInPlace(&next, e.AchievementID, r.now())

	unlocked := next.AchievementByID(e.AchievementID).Clone()
	state.Progress = next
	state.RecentAchievement = &unlocked
	state.ShowConfetti = true
	return state
}

// repair re-derives every field of an externally supplied progress record.
// Second line of defense after the storage adapter's validation: imports
// can reach the reducer without passing through the adapter.
func (r *Reducer) repair(p progress.UserProgress) progress.UserProgress {
	safe := p.Clone()
	if safe.CurrentSection == "" {
		safe.CurrentSection = r.defaultSection
	}
	if safe.CompletedSections == nil {
		safe.CompletedSections = []string{}
	}
	if safe.CompletedActivities == nil {
		safe.CompletedActivities = []string{}
	}
	if safe.TotalScore < 0 {
		safe.TotalScore = 0
	}
	if safe.StreakCount < 0 {
		safe.StreakCount = 0
	}
	safe.Achievements = progress.MergeAchievements(r.catalog, safe.Achievements)
	return safe
}

// unlockInPlace marks id unlocked at the given instant. Idempotent: an
// already-unlocked achievement keeps its original timestamp. Unknown ids
// are ignored.
func unlockInPlace(p *progress.UserProgress, id string, at time.Time) {
	a := p.AchievementByID(id)
	if a == nil || a.Unlocked {
		return
	}
	a.Unlocked = true
	t := at
	a.UnlockedAt = &t
}

// Achievement ids the reducer awards on its own. They must exist in the
// catalog; unlockInPlace ignores them when they do not.
const (
	firstStepsID    = "first-steps"
	completionistID = "completionist"
)
