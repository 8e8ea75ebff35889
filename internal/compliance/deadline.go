package compliance

import "time"

// NextDeadline returns the deadline of the period following the one whose
// deadline is current. It is computed unconditionally; deciding whether the
// current deadline already passed is left to the caller.
func NextDeadline(target ReportTarget, current time.Time) (time.Time, error) {
	sched, err := parseSchedule(target)
	if err != nil {
		return time.Time{}, err
	}
	switch sched.kind {
	case ScheduleDaily:
		return at(current, 1, sched.clock), nil
	case ScheduleWeekly:
		return at(current, 7, sched.clock), nil
	default:
		y, m, _ := current.Date()
		nextMonth := time.Date(y, m+1, 1, 0, 0, 0, 0, current.Location())
		return monthlyDeadline(nextMonth, sched.day, sched.clock), nil
	}
}
