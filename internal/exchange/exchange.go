// Package exchange implements manual export and import of progress
// snapshots.
//
// Export writes a human/tool readable JSON document; Import reverses it.
// Import is an untrusted boundary exactly like a storage read, with one
// extra gate in front: the document must first satisfy the CUE schema
// below, then the progress payload passes the same structural validation
// and catalog reconciliation a stored snapshot would. Any failure rejects
// the document whole - nothing is ever partially merged into live state.
package exchange

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/questlog/internal/progress"
)

// ExportVersion is the export document schema version.
const ExportVersion = 1

// exportSchema is the CUE schema an import document must satisfy before
// the structural validator even sees it. Definitions are closed: unknown
// fields reject the document.
const exportSchema = `
#Achievement: {
	id:          string
	title:       string
	description: string
	icon:        string
	unlocked:    bool
	unlockedAt?: string
}

#Progress: {
	currentSection:      string
	completedSections: [...string]
	completedActivities: [...string]
	totalScore:        number
	streakCount:       number
	lastActivityDate?: string
	achievements: [...#Achievement]
}

#Export: {
	version:    1
	exportedAt: string
	progress:   #Progress
}
`

// Document is the export file shape.
type Document struct {
	Version    int                               `json:"version"`
	ExportedAt string                            `json:"exportedAt"`
	Progress   progress.SerializableUserProgress `json:"progress"`
}

var (
	schemaOnce sync.Once
	schemaVal  cue.Value
)

// schema compiles the export schema once. The schema text is a compile-time
// constant; failing to compile it is a programming error.
func schema() cue.Value {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(exportSchema)
		if err := v.Err(); err != nil {
			panic(fmt.Sprintf("exchange: export schema does not compile: %v", err))
		}
		schemaVal = v.LookupPath(cue.ParsePath("#Export"))
		if err := schemaVal.Err(); err != nil {
			panic(fmt.Sprintf("exchange: export schema missing #Export: %v", err))
		}
	})
	return schemaVal
}

// Export renders p as an export document. now stamps exportedAt.
func Export(p progress.UserProgress, now time.Time) ([]byte, error) {
	doc := Document{
		Version:    ExportVersion,
		ExportedAt: progress.FormatTime(now),
		Progress:   progress.Serialize(p),
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(out, '\n'), nil
}

// Import parses and validates an export document and returns the contained
// progress, reconciled against catalog. A nil error guarantees the result
// is safe to hand to the reducer's load path.
func Import(data []byte, catalog []progress.Achievement) (*progress.UserProgress, error) {
	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	payload, ok := decoded["progress"]
	if !ok || !progress.ValidateStored(payload) {
		return nil, fmt.Errorf("export document holds an invalid progress payload")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("re-encode progress payload: %w", err)
	}
	var serial progress.SerializableUserProgress
	if err := json.Unmarshal(raw, &serial); err != nil {
		return nil, fmt.Errorf("decode progress payload: %w", err)
	}

	p := progress.Deserialize(serial)
	p.Achievements = progress.MergeAchievements(catalog, p.Achievements)
	return &p, nil
}

// checkSchema unifies the document with the export schema and requires a
// concrete, error-free result.
func checkSchema(data []byte) error {
	expr, err := cuejson.Extract("export.json", data)
	if err != nil {
		return fmt.Errorf("parse export: %w", err)
	}

	s := schema()
	doc := s.Context().BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build export document: %w", err)
	}

	unified := s.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("export document does not match schema: %w", err)
	}
	return nil
}
