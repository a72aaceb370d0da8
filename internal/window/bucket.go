// Package window derives the minute-granularity bucket keys that namespace
// all aggregate counters. Bucketing uses the timestamp embedded in the
// event, never wall-clock arrival time, so aggregation reflects event-time.
package window

import "time"

const layout = "200601021504"

// Bucket truncates t to minute resolution and formats it as YYYYMMDDHHMM in
// UTC. Timestamps differing only in seconds share a bucket; crossing a
// minute boundary always changes it.
func Bucket(t time.Time) string {
	return t.UTC().Format(layout)
}
