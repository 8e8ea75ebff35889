// Package compliance evaluates report-submission deadlines for every hotel and
// configured report target.
package compliance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScheduleKind enumerates recurring deadline schedules.
type ScheduleKind string

const (
	ScheduleDaily   ScheduleKind = "daily"
	ScheduleWeekly  ScheduleKind = "weekly"
	ScheduleMonthly ScheduleKind = "monthly"
)

// Valid reports whether the kind is one of the supported schedules.
func (k ScheduleKind) Valid() bool {
	switch k {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
		return true
	}
	return false
}

// ReportTarget is the configured recurring schedule for one report type.
type ReportTarget struct {
	ID         int64        `json:"id"`
	ReportType ReportType   `json:"report_type"`
	Kind       ScheduleKind `json:"target_type"`
	TargetTime string       `json:"target_time"`
	DayOfWeek  *int         `json:"day_of_week"`
	DayOfMonth *int         `json:"day_of_month"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Hotel is the minimal hotel projection the engine fans out over.
type Hotel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TimeOfDay is a deadline clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts HH:mm and the HH:mm:ss form PostgreSQL returns for TIME columns.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return TimeOfDay{}, fmt.Errorf("target_time is empty")
	}
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("target_time %q is not HH:mm", raw)
	}
	hour, ok := clockField(parts[0], 23)
	if !ok {
		return TimeOfDay{}, fmt.Errorf("target_time %q has invalid hour", raw)
	}
	minute, ok := clockField(parts[1], 59)
	if !ok {
		return TimeOfDay{}, fmt.Errorf("target_time %q has invalid minute", raw)
	}
	if len(parts) == 3 {
		if _, ok := clockField(parts[2], 59); !ok {
			return TimeOfDay{}, fmt.Errorf("target_time %q has invalid second", raw)
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// clockField parses exactly two ASCII digits no greater than max.
func clockField(field string, max int) (int, bool) {
	if len(field) != 2 || field[0] < '0' || field[0] > '9' || field[1] < '0' || field[1] > '9' {
		return 0, false
	}
	v, err := strconv.Atoi(field)
	if err != nil || v > max {
		return 0, false
	}
	return v, true
}

// String renders the clock time as HH:mm.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Status is the classification outcome for one (hotel, report type) pair.
type Status int

const (
	StatusUnknown Status = iota
	StatusWaiting
	StatusOnTime
	StatusLate
	StatusProcessingError
)

var statusLabels = map[Status]string{
	StatusWaiting:         "Menunggu",
	StatusOnTime:          "Tepat Waktu",
	StatusLate:            "Terlambat",
	StatusProcessingError: "Processing Error",
}

// String returns the label the dashboard renders.
func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// ParseStatus maps a dashboard label back to a Status.
func ParseStatus(label string) (Status, error) {
	for status, l := range statusLabels {
		if l == label {
			return status, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown status %q", label)
}

// MarshalJSON encodes the status as its dashboard label.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusUnknown {
		return nil, fmt.Errorf("compliance: cannot encode unknown status")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a dashboard label.
func (s *Status) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StatusRecord is the engine output for one (hotel, report type) pair.
type StatusRecord struct {
	HotelID        int64      `json:"hotel_id"`
	HotelName      string     `json:"hotel_name"`
	ReportType     ReportType `json:"report_type"`
	ReportName     string     `json:"report_name"`
	Status         Status     `json:"status"`
	LastSubmission *time.Time `json:"last_submission"`
	NextDeadline   *time.Time `json:"next_deadline"`
}

// instantLayout matches the millisecond UTC form browsers produce for ISO strings.
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON renders instants in UTC with millisecond precision.
func (r StatusRecord) MarshalJSON() ([]byte, error) {
	type wire struct {
		HotelID        int64      `json:"hotel_id"`
		HotelName      string     `json:"hotel_name"`
		ReportType     ReportType `json:"report_type"`
		ReportName     string     `json:"report_name"`
		Status         Status     `json:"status"`
		LastSubmission *string    `json:"last_submission"`
		NextDeadline   *string    `json:"next_deadline"`
	}
	return json.Marshal(wire{
		HotelID:        r.HotelID,
		HotelName:      r.HotelName,
		ReportType:     r.ReportType,
		ReportName:     r.ReportName,
		Status:         r.Status,
		LastSubmission: formatInstant(r.LastSubmission),
		NextDeadline:   formatInstant(r.NextDeadline),
	})
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	out := t.UTC().Format(instantLayout)
	return &out
}

// Filters narrows an aggregation. Zero values match everything.
type Filters struct {
	HotelID    *int64
	ReportType ReportType
	Status     Status
}

// MatchHotel reports whether the hotel passes the hotel filter.
func (f Filters) MatchHotel(h Hotel) bool {
	return f.HotelID == nil || *f.HotelID == h.ID
}

// MatchTarget reports whether the target passes the report type filter.
func (f Filters) MatchTarget(t ReportTarget) bool {
	return f.ReportType == "" || f.ReportType == t.ReportType
}

// Match reports whether a computed record passes every filter.
func (f Filters) Match(r StatusRecord) bool {
	if f.HotelID != nil && *f.HotelID != r.HotelID {
		return false
	}
	if f.ReportType != "" && f.ReportType != r.ReportType {
		return false
	}
	if f.Status != StatusUnknown && f.Status != r.Status {
		return false
	}
	return true
}

// ApplyFilters keeps the records matching f, preserving order.
func ApplyFilters(records []StatusRecord, f Filters) []StatusRecord {
	out := make([]StatusRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
