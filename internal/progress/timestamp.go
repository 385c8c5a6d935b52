package progress

import "time"

// CanonicalTimeLayout is the single timestamp format accepted and produced
// at the persistence boundary: UTC, millisecond precision, "Z" suffix.
//
// This matches ECMAScript's Date.toISOString, which is what earlier
// snapshots of the application wrote. Keeping the exact shape means old
// records validate and new records stay readable by anything that consumed
// the old format.
const CanonicalTimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the canonical layout.
// Always UTC; sub-millisecond precision is truncated.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(CanonicalTimeLayout)
}

// ParseCanonicalTime parses s and additionally requires that s is the
// canonical rendering of the parsed instant - the round-trip check.
//
// Near-miss formats ("2024-1-1", missing milliseconds, numeric zones,
// lowercase z) are rejected even when a lenient parser would accept them.
// A timestamp that does not round-trip byte-identically is treated as
// untrusted.
func ParseCanonicalTime(s string) (time.Time, bool) {
	t, err := time.Parse(CanonicalTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	if FormatTime(t) != s {
		return time.Time{}, false
	}
	return t, true
}
