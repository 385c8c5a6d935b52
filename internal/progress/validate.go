package progress

// requiredFields must all be present in a stored progress record.
// lastActivityDate is optional and checked separately.
var requiredFields = []string{
	"currentSection",
	"completedSections",
	"completedActivities",
	"totalScore",
	"streakCount",
	"achievements",
}

// ValidateStored reports whether raw - the result of unmarshaling untrusted
// JSON into any - is a structurally valid stored progress record.
//
// The check is all-or-nothing: a single missing field, wrong-typed field, or
// non-canonical timestamp fails the whole record. Callers that receive false
// must discard the payload and fall back to initial state; partial
// acceptance is never allowed past this boundary.
//
// Numeric fields are format-checked only (JSON number). Clamping negative
// values to zero is the reducer's job on load, not the validator's.
func ValidateStored(raw any) bool {
	rec, ok := raw.(map[string]any)
	if !ok || rec == nil {
		return false
	}

	for _, field := range requiredFields {
		if _, present := rec[field]; !present {
			return false
		}
	}

	if _, ok := rec["currentSection"].(string); !ok {
		return false
	}
	if !isStringSlice(rec["completedSections"]) {
		return false
	}
	if !isStringSlice(rec["completedActivities"]) {
		return false
	}
	if _, ok := rec["totalScore"].(float64); !ok {
		return false
	}
	if _, ok := rec["streakCount"].(float64); !ok {
		return false
	}

	achievements, ok := rec["achievements"].([]any)
	if !ok {
		return false
	}
	for _, entry := range achievements {
		if !validAchievement(entry) {
			return false
		}
	}

	if v, present := rec["lastActivityDate"]; present {
		if !isCanonicalTimeValue(v) {
			return false
		}
	}

	return true
}

// validAchievement checks a single stored achievement entry.
func validAchievement(raw any) bool {
	rec, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	for _, field := range []string{"id", "title", "description", "icon"} {
		if _, ok := rec[field].(string); !ok {
			return false
		}
	}
	if _, ok := rec["unlocked"].(bool); !ok {
		return false
	}
	if v, present := rec["unlockedAt"]; present {
		if !isCanonicalTimeValue(v) {
			return false
		}
	}
	return true
}

func isStringSlice(raw any) bool {
	list, ok := raw.([]any)
	if !ok {
		return false
	}
	for _, v := range list {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

func isCanonicalTimeValue(raw any) bool {
	s, ok := raw.(string)
	if !ok {
		return false
	}
	_, ok = ParseCanonicalTime(s)
	return ok
}
