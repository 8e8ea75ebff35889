package compliance

import (
	"errors"
	"fmt"
	"time"
)

// Period is the current evaluation window and its deadline. Start and End are
// both inclusive; End is the last millisecond of the window.
type Period struct {
	Start    time.Time
	End      time.Time
	Deadline time.Time
}

// ResolvePeriod computes the window containing now and the deadline inside it.
// All arithmetic happens in now's location.
func ResolvePeriod(target ReportTarget, now time.Time) (Period, error) {
	sched, err := parseSchedule(target)
	if err != nil {
		return Period{}, err
	}
	switch sched.kind {
	case ScheduleDaily:
		start, end := DayRange(now)
		return Period{Start: start, End: end, Deadline: at(start, 0, sched.clock)}, nil
	case ScheduleWeekly:
		start, end := WeekRange(now)
		return Period{Start: start, End: end, Deadline: at(start, sched.day, sched.clock)}, nil
	default:
		start, end := MonthRange(now)
		return Period{Start: start, End: end, Deadline: monthlyDeadline(start, sched.day, sched.clock)}, nil
	}
}

// DayRange returns the first and last millisecond of t's calendar day.
func DayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// WeekRange returns Sunday 00:00 through Saturday 23:59:59.999 of t's week.
func WeekRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	offset := int(t.Weekday())
	start := time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d-offset+6, 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// MonthRange returns the first and last millisecond of t's calendar month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, DaysIn(y, m), 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type schedule struct {
	kind  ScheduleKind
	clock TimeOfDay
	// day is the weekday offset for weekly targets and the day of month for monthly ones.
	day int
}

func parseSchedule(target ReportTarget) (schedule, error) {
	rt := target.ReportType
	if !target.Kind.Valid() {
		return schedule{}, configError(rt, "target_type", fmt.Errorf("unsupported schedule %q", target.Kind))
	}
	clock, err := ParseTimeOfDay(target.TargetTime)
	if err != nil {
		return schedule{}, configError(rt, "target_time", err)
	}
	sched := schedule{kind: target.Kind, clock: clock}
	switch target.Kind {
	case ScheduleWeekly:
		if target.DayOfWeek == nil {
			return schedule{}, configError(rt, "day_of_week", errors.New("required for weekly targets"))
		}
		if *target.DayOfWeek < 0 || *target.DayOfWeek > 6 {
			return schedule{}, configError(rt, "day_of_week", fmt.Errorf("%d outside 0-6", *target.DayOfWeek))
		}
		sched.day = *target.DayOfWeek
	case ScheduleMonthly:
		if target.DayOfMonth == nil {
			return schedule{}, configError(rt, "day_of_month", errors.New("required for monthly targets"))
		}
		if *target.DayOfMonth < 1 || *target.DayOfMonth > 31 {
			return schedule{}, configError(rt, "day_of_month", fmt.Errorf("%d outside 1-31", *target.DayOfMonth))
		}
		sched.day = *target.DayOfMonth
	}
	return sched, nil
}

// at places the clock time on the day `days` after base's calendar day.
func at(base time.Time, days int, clock TimeOfDay) time.Time {
	y, m, d := base.Date()
	return time.Date(y, m, d+days, clock.Hour, clock.Minute, 0, 0, base.Location())
}

// monthlyDeadline places dayOfMonth in monthStart's month, clamped to the
// month's last day.
func monthlyDeadline(monthStart time.Time, dayOfMonth int, clock TimeOfDay) time.Time {
	y, m, _ := monthStart.Date()
	if last := DaysIn(y, m); dayOfMonth > last {
		dayOfMonth = last
	}
	return time.Date(y, m, dayOfMonth, clock.Hour, clock.Minute, 0, 0, monthStart.Location())
}
