package compliance

import "time"

// Classify decides the status for a period from the current instant, the
// period deadline, and the latest submission inside the period (nil when none).
func Classify(now, deadline time.Time, last *time.Time) Status {
	if last == nil {
		if now.After(deadline) {
			return StatusLate
		}
		return StatusWaiting
	}
	if last.After(deadline) {
		return StatusLate
	}
	return StatusOnTime
}
