package rules

import (
	"sort"
	"time"
)

type ComplaintOutcome struct {
	// Active holds the unexpired complaints including the one just filed.
	Active map[string]time.Time
	// Inserted is false when the complainant already had an active entry
	// and only its timestamp was refreshed.
	Inserted bool
	Expired  int
	// ExpiredIDs are the complainants dropped by expiry, sorted. The
	// complainant is never listed; its entry is rewritten instead.
	ExpiredIDs []string
}

// ActiveComplaints drops every entry older than window. A non-positive
// window disables expiry.
func ActiveComplaints(complains map[string]time.Time, now time.Time, window time.Duration) (map[string]time.Time, int) {
	out := make(map[string]time.Time, len(complains)+1)
	expired := 0
	for id, ts := range complains {
		if window > 0 && now.Sub(ts) > window {
			expired++
			continue
		}
		out[id] = ts
	}
	return out, expired
}

// FileComplaint expires stale entries, then refreshes or inserts the
// complainant at now. A complainant holds at most one active entry.
func FileComplaint(complains map[string]time.Time, complainantID string, now time.Time, window time.Duration) ComplaintOutcome {
	active, expired := ActiveComplaints(complains, now, window)
	expiredIDs := make([]string, 0, expired)
	for id := range complains {
		if _, ok := active[id]; !ok && id != complainantID {
			expiredIDs = append(expiredIDs, id)
		}
	}
	sort.Strings(expiredIDs)

	_, existed := active[complainantID]
	active[complainantID] = now
	return ComplaintOutcome{
		Active:     active,
		Inserted:   !existed,
		Expired:    expired,
		ExpiredIDs: expiredIDs,
	}
}

// ShouldBlock reports whether active complaints reach ratio of the
// membership.
func ShouldBlock(active, membershipSize int, ratio float64) bool {
	if membershipSize <= 0 || ratio <= 0 {
		return false
	}
	return float64(active)/float64(membershipSize) >= ratio
}
