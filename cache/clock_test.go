package cache

import "time"

// fixedNowFunc pins the cache clock so entry timestamps and prune
// cutoffs can be asserted against a known instant.
func fixedNowFunc() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}
