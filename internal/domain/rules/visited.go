package rules

import "time"

const DefaultVisitedCapacity = 10

// RecordVisit returns a copy of visited with visitorID stamped at at. A new
// key first evicts the oldest entries until there is room, so the result
// never holds more than capacity entries.
func RecordVisit(visited map[string]time.Time, visitorID string, at time.Time, capacity int) map[string]time.Time {
	if capacity <= 0 {
		capacity = DefaultVisitedCapacity
	}

	out := make(map[string]time.Time, len(visited)+1)
	for id, ts := range visited {
		out[id] = ts
	}

	if _, ok := out[visitorID]; !ok {
		for len(out) >= capacity {
			delete(out, oldestKey(out))
		}
	}
	out[visitorID] = at
	return out
}

// oldestKey breaks timestamp ties on the smaller id so eviction is
// deterministic.
func oldestKey(m map[string]time.Time) string {
	var (
		key   string
		stamp time.Time
		found bool
	)
	for id, ts := range m {
		if !found || ts.Before(stamp) || (ts.Equal(stamp) && id < key) {
			key, stamp, found = id, ts, true
		}
	}
	return key
}
