package cache

import "time"

// timeToEpoch converts an instant to seconds since the Unix epoch as a
// float, truncated to nanosecond resolution.
func timeToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// epochToTime converts an epoch-seconds float back to an instant.
func epochToTime(epoch float64) time.Time {
	return time.Unix(0, int64(epoch*1e9))
}
