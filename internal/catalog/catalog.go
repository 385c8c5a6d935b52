// Package catalog holds the static content catalog: the ordered list of
// sections and the full set of achievements the application can ever award.
//
// The catalog is compile-time data embedded from catalog.yaml and treated as
// read-only ground truth by the engine. A malformed embedded catalog is a
// programming error and panics at init; it can never be triggered by user
// data at runtime.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/questlog/internal/progress"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Section is one top-level content section.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// achievementDef mirrors the achievement entries in catalog.yaml.
// Unlock state is a runtime concern; the catalog defines identity only.
type achievementDef struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type catalogFile struct {
	Sections     []Section        `yaml:"sections"`
	Achievements []achievementDef `yaml:"achievements"`
}

var loaded catalogFile

func init() {
	if err := yaml.Unmarshal(catalogYAML, &loaded); err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog.yaml is malformed: %v", err))
	}
	if len(loaded.Sections) == 0 || len(loaded.Achievements) == 0 {
		panic("catalog: embedded catalog.yaml is missing sections or achievements")
	}
	seen := make(map[string]bool, len(loaded.Achievements))
	for _, a := range loaded.Achievements {
		if a.ID == "" || seen[a.ID] {
			panic(fmt.Sprintf("catalog: duplicate or empty achievement id %q", a.ID))
		}
		seen[a.ID] = true
	}
}

// DefaultSection is where a fresh install starts.
const DefaultSection = "intro"

// Sections returns the ordered section list.
func Sections() []Section {
	out := make([]Section, len(loaded.Sections))
	copy(out, loaded.Sections)
	return out
}

// TotalSections is the number of sections a user must complete for the
// completionist achievement.
func TotalSections() int {
	return len(loaded.Sections)
}

// Achievements returns the full achievement catalog as fresh, locked
// runtime values in catalog order. Callers own the returned slice.
func Achievements() []progress.Achievement {
	out := make([]progress.Achievement, len(loaded.Achievements))
	for i, def := range loaded.Achievements {
		out[i] = progress.Achievement{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
		}
	}
	return out
}

// HasAchievement reports whether id names a catalog achievement.
func HasAchievement(id string) bool {
	for _, def := range loaded.Achievements {
		if def.ID == id {
			return true
		}
	}
	return false
}
