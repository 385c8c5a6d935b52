package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/questlog/internal/progress"
)

// DefaultKey is the primary storage key. The name predates this engine;
// keeping it means existing installs upgrade in place.
const DefaultKey = "prompt-engineering-progress"

// quarantineInfix joins the primary key and the epoch-millis suffix of a
// quarantine backup key.
const quarantineInfix = "_corrupted_"

// Adapter reads and writes progress snapshots through a KV store.
//
// Load returns nil for every failure mode (absent, corrupt, invalid) -
// callers treat nil as a fresh install. Save returns false for every
// failure mode after recovery attempts. No error ever escapes to callers;
// failures are logged here and degraded to those results.
type Adapter struct {
	kv      KV
	key     string
	catalog []progress.Achievement
	now     func() time.Time
	log     *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithKey overrides the primary storage key. Tests use distinct keys to
// isolate scenarios sharing one KV.
func WithKey(key string) AdapterOption {
	return func(a *Adapter) { a.key = key }
}

// WithNow overrides the wall-time source used for envelope timestamps and
// quarantine key suffixes.
func WithNow(now func() time.Time) AdapterOption {
	return func(a *Adapter) { a.now = now }
}

// WithLogger overrides the logger.
func WithLogger(log *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.log = log }
}

// NewAdapter builds an adapter over kv. catalog is the static achievement
// catalog every loaded snapshot is reconciled against.
func NewAdapter(kv KV, catalog []progress.Achievement, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		kv:      kv,
		key:     DefaultKey,
		catalog: catalog,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the primary storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Load reads the persisted snapshot. nil means fresh install: the key is
// absent, the text was unparseable (now quarantined), or the payload failed
// validation. A non-nil result has been validated, deserialized, and
// reconciled against the catalog.
func (a *Adapter) Load() *progress.UserProgress {
	raw, found, err := a.kv.Get(a.key)
	if err != nil {
		a.log.Error("progress read failed", "key", a.key, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		a.log.Error("stored progress is unparseable, quarantining", "key", a.key, "error", err)
		a.quarantine(raw)
		return nil
	}

	payload := a.unwrap(parsed)

	if !progress.ValidateStored(payload) {
		// It parsed, so the raw text holds nothing a quarantine would
		// preserve. Discard and start fresh.
		a.log.Error("stored progress failed validation, resetting to initial state", "key", a.key)
		return nil
	}

	var serial progress.SerializableUserProgress
	if err := reencode(payload, &serial); err != nil {
		a.log.Error("stored progress could not be decoded", "key", a.key, "error", err)
		return nil
	}

	p := progress.Deserialize(serial)
	p.Achievements = progress.MergeAchievements(a.catalog, p.Achievements)
	return &p
}

// unwrap extracts the data payload from a parsed record. Versioned
// envelopes have version+data fields; anything else is a legacy snapshot
// stored before versioning and is taken whole.
func (a *Adapter) unwrap(parsed any) any {
	rec, ok := parsed.(map[string]any)
	if !ok {
		return parsed
	}
	version, hasVersion := rec["version"].(float64)
	data, hasData := rec["data"]
	if !hasVersion || !hasData {
		return parsed
	}

	if int(version) != CurrentSchemaVersion {
		// Leniency pending migration logic: the payload is still
		// attempted, validation decides.
		a.log.Warn("storage schema version mismatch",
			"expected", CurrentSchemaVersion,
			"found", int(version),
		)
	}

	if stored, ok := rec["checksum"].(string); ok && stored != "" {
		computed, err := dataChecksum(data)
		if err != nil {
			a.log.Warn("checksum could not be recomputed", "error", err)
		} else if computed != stored {
			a.log.Warn("stored progress checksum mismatch",
				"stored", stored,
				"computed", computed,
			)
		}
	}

	return data
}

// Save persists a snapshot. Returns true when the write (or the single
// quota-recovery retry) succeeded.
func (a *Adapter) Save(p progress.UserProgress) bool {
	data := progress.Serialize(p)
	env := Envelope{
		Version:   CurrentSchemaVersion,
		Data:      data,
		Timestamp: progress.FormatTime(a.now()),
	}
	if sum, err := serializableChecksum(data); err == nil {
		env.Checksum = sum
	} else {
		a.log.Warn("checksum computation failed, writing without one", "error", err)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		a.log.Error("progress could not be encoded", "error", err)
		return false
	}

	err = a.kv.Set(a.key, raw)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		a.log.Error("progress write failed", "key", a.key, "error", err)
		return false
	}

	// Quota exhausted: quarantine backups are the only data this engine
	// considers expendable. Prune them all and retry exactly once.
	pruned, perr := a.PurgeQuarantine()
	if perr != nil {
		a.log.Error("quarantine prune failed during quota recovery", "error", perr)
	}
	a.log.Warn("storage quota exceeded, pruned quarantine backups and retrying",
		"pruned", pruned,
	)

	if err := a.kv.Set(a.key, raw); err != nil {
		a.log.Error("progress write failed after quarantine prune", "key", a.key, "error", err)
		return false
	}
	return true
}

// quarantine preserves unparseable raw text under a timestamped backup key.
// Best effort: a failed backup is logged and the load continues to its
// fresh-install fallback.
func (a *Adapter) quarantine(raw []byte) {
	key := a.key + quarantineInfix + strconv.FormatInt(a.now().UnixMilli(), 10)
	if err := a.kv.Set(key, raw); err != nil {
		a.log.Error("quarantine backup failed", "key", key, "error", err)
		return
	}
	a.log.Warn("corrupted progress quarantined", "key", key, "bytes", len(raw))
}

// ListQuarantine enumerates quarantine backup keys. Maintenance surface
// only - nothing in the engine reads these back.
func (a *Adapter) ListQuarantine() ([]string, error) {
	keys, err := a.kv.Keys(a.key + quarantineInfix)
	if err != nil {
		return nil, fmt.Errorf("list quarantine: %w", err)
	}
	// A defensive filter: prefix scans must never return the primary key.
	out := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, a.key+quarantineInfix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// PurgeQuarantine deletes every quarantine backup and reports how many.
func (a *Adapter) PurgeQuarantine() (int, error) {
	keys, err := a.ListQuarantine()
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, k := range keys {
		if err := a.kv.Delete(k); err != nil {
			return pruned, fmt.Errorf("purge quarantine: %w", err)
		}
		pruned++
	}
	return pruned, nil
}

// reencode converts a decoded JSON value into a typed struct by
// re-marshaling. Only reached after validation, so failures are
// exceptional.
func reencode(from any, to any) error {
	raw, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, to); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
