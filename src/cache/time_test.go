package cache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeEpochRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Unix(0, 0),
		time.Unix(1, 500000000),
		time.Date(2025, 6, 15, 12, 30, 45, 123456789, time.UTC),
		time.Unix(1<<31, 999999999),
	}

	for _, instant := range instants {
		got := epochToTime(timeToEpoch(instant))
		diff := instant.Sub(got)
		assert.LessOrEqual(t, math.Abs(diff.Seconds()), 1e-6,
			"round trip drifted for %v", instant)
	}
}

func TestEpochRoundTripDouble(t *testing.T) {
	epochs := []float64{0, 1.5, 1750000000.123456}

	for _, epoch := range epochs {
		got := timeToEpoch(epochToTime(epoch))
		assert.LessOrEqual(t, math.Abs(got-epoch), 1e-6)
	}
}

func TestTimeToEpochSubsecond(t *testing.T) {
	instant := time.Unix(100, 250000000)
	assert.InDelta(t, 100.25, timeToEpoch(instant), 1e-9)
}
