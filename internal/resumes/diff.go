package resumes

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DiffSections compares two section maps and returns the names of sections
// whose values differ. A nil previous means there is no baseline (first
// write), in which case every key of next counts as changed.
//
// Order is deterministic: keys of previous in sorted order first, then keys
// that appear only in next, also sorted.
func DiffSections(previous, next SectionMap) []string {
	if previous == nil {
		keys := make([]string, 0, len(next))
		for name := range next {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		return keys
	}

	var changed []string
	for _, name := range sortedKeys(previous) {
		nextVal, ok := next[name]
		if !ok {
			changed = append(changed, name)
			continue
		}
		if !deepEqual(previous[name], nextVal) {
			changed = append(changed, name)
		}
	}
	for _, name := range sortedKeys(next) {
		if _, ok := previous[name]; !ok {
			changed = append(changed, name)
		}
	}
	return changed
}

// ChangeSummary renders a human-readable description of a change set.
func ChangeSummary(changed []string) string {
	switch n := len(changed); {
	case n == 0:
		return "No changes detected"
	case n == 1:
		return "Updated " + changed[0]
	case n <= 3:
		return "Updated " + strings.Join(changed, ", ")
	default:
		return fmt.Sprintf("Updated %d sections", n)
	}
}

// NormalizeSections round-trips a payload through JSON so every value is one
// of the canonical encoding/json types. This keeps deepEqual total no matter
// how the caller built the map (typed structs, ints vs floats, etc).
func NormalizeSections(data map[string]any) (SectionMap, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("normalize sections: %w", err)
	}
	var out SectionMap
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize sections: %w", err)
	}
	return out, nil
}

// deepEqual reports structural equality of two JSON-decoded values. Objects
// compare by full key set plus recursive values, arrays element-by-element
// in order, primitives by value. null and absent are distinct; that
// distinction is handled by the callers that probe key presence.
func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, present := bv[k]
			if !present || !deepEqual(v, bval) {
				return false
			}
		}
		return true
	default:
		// Non-normalized input; fall back to the JSON rendering.
		ra, errA := json.Marshal(a)
		rb, errB := json.Marshal(b)
		return errA == nil && errB == nil && string(ra) == string(rb)
	}
}

func sortedKeys(m SectionMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
