package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDailyBoundary(t *testing.T) {
	deadline := date(2024, time.March, 1, 9, 0, 0)
	early := date(2024, time.March, 1, 8, 59, 59)
	late := date(2024, time.March, 1, 9, 0, 1)

	cases := []struct {
		name string
		now  time.Time
		last *time.Time
		want Status
	}{
		{"submitted before deadline", date(2024, time.March, 1, 12, 0, 0), &early, StatusOnTime},
		{"submitted at deadline", date(2024, time.March, 1, 12, 0, 0), &deadline, StatusOnTime},
		{"submitted after deadline", date(2024, time.March, 1, 12, 0, 0), &late, StatusLate},
		{"nothing yet before deadline", date(2024, time.March, 1, 8, 0, 0), nil, StatusWaiting},
		{"nothing at deadline", deadline, nil, StatusWaiting},
		{"nothing after deadline", date(2024, time.March, 1, 10, 0, 0), nil, StatusLate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.now, deadline, tc.last))
		})
	}
}

func TestClassifyNeverReturnsProcessingError(t *testing.T) {
	deadline := date(2024, time.March, 1, 9, 0, 0)
	for _, now := range []time.Time{deadline.Add(-time.Hour), deadline, deadline.Add(time.Hour)} {
		assert.NotEqual(t, StatusProcessingError, Classify(now, deadline, nil))
		assert.NotEqual(t, StatusProcessingError, Classify(now, deadline, &now))
	}
}
