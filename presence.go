package qskema

import (
	"strconv"
	"strings"
)

// Presence is the bit flag collected by WithMeta APIs.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the parsed value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

func applyPresenceOptions(pm PresenceMap, popt PresenceOpt) PresenceMap {
	if pm == nil || !popt.Collect {
		return nil
	}
	shouldInclude := func(path string) bool {
		if len(popt.Include) > 0 {
			ok := false
			for _, p := range popt.Include {
				if strings.HasPrefix(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range popt.Exclude {
			if strings.HasPrefix(path, p) {
				return false
			}
		}
		return true
	}
	filtered := make(PresenceMap, len(pm))
	for k, v := range pm {
		if shouldInclude(k) {
			filtered[k] = v
		}
	}
	return filtered
}

// mergePresenceMaps returns a new PresenceMap that is the bitwise-OR merge of a and b.
func mergePresenceMaps(a, b PresenceMap) PresenceMap {
	if a == nil && b == nil {
		return nil
	}
	out := make(PresenceMap, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] |= v
	}
	return out
}

// collectPresenceMapFromValue walks a decoded value and collects JSON Pointer
// paths for objects and arrays. Root path "/" is always marked seen. A wire
// record counts as a leaf: its "val" and "unit" keys are not recorded.
func collectPresenceMapFromValue(v any) PresenceMap {
	pm := make(PresenceMap)
	pm["/"] = PresenceSeen
	collectPresenceRecurse(v, "", pm)
	return pm
}

func collectPresenceRecurse(v any, cur string, pm PresenceMap) {
	switch t := v.(type) {
	case map[string]any:
		if cur != "" && isRecordShape(t) {
			return
		}
		for k, val := range t {
			p := cur + "/" + k
			if val == nil {
				pm[p] |= PresenceSeen | PresenceWasNull
				continue
			}
			pm[p] |= PresenceSeen
			collectPresenceRecurse(val, p, pm)
		}
	case []any:
		for i, val := range t {
			p := cur + "/" + strconv.Itoa(i)
			pm[p] |= PresenceSeen
			collectPresenceRecurse(val, p, pm)
		}
	}
}

func isRecordShape(m map[string]any) bool {
	if len(m) != 2 {
		return false
	}
	_, hasVal := m["val"]
	_, hasUnit := m["unit"]
	return hasVal && hasUnit
}
