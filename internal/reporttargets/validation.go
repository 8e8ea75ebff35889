package reporttargets

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
	"github.com/hotel-audit/hotelaudit/internal/platform/httpx"
)

// UpsertInput is the body accepted by POST /api/report-targets.
type UpsertInput struct {
	ReportType string `json:"report_type" validate:"required,reporttype"`
	TargetType string `json:"target_type" validate:"required,oneof=daily weekly monthly"`
	TargetTime string `json:"target_time" validate:"required,hhmm"`
	DayOfWeek  *int   `json:"day_of_week"`
	DayOfMonth *int   `json:"day_of_month"`
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failed field of an upsert body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "reporttargets: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("reporttype", func(fl validator.FieldLevel) bool {
		return compliance.Known(compliance.ReportType(fl.Field().String()))
	})
	v.RegisterStructValidation(anchorDayRule, UpsertInput{})
	return v
}

// anchorDayRule enforces that weekly targets carry day_of_week in [0,6] and
// monthly targets carry day_of_month in [1,31].
func anchorDayRule(sl validator.StructLevel) {
	in := sl.Current().Interface().(UpsertInput)
	switch compliance.ScheduleKind(in.TargetType) {
	case compliance.ScheduleWeekly:
		if in.DayOfWeek == nil || *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
			sl.ReportError(in.DayOfWeek, "day_of_week", "DayOfWeek", "dayofweek", "")
		}
	case compliance.ScheduleMonthly:
		if in.DayOfMonth == nil || *in.DayOfMonth < 1 || *in.DayOfMonth > 31 {
			sl.ReportError(in.DayOfMonth, "day_of_month", "DayOfMonth", "dayofmonth", "")
		}
	}
}

var fieldMessages = map[string]string{
	"required":   "wajib diisi",
	"reporttype": "report_type tidak dikenal",
	"oneof":      "target_type harus daily, weekly, atau monthly",
	"hhmm":       "target_time harus dalam format HH:mm",
	"dayofweek":  "day_of_week harus antara 0 dan 6 untuk target mingguan",
	"dayofmonth": "day_of_month harus antara 1 dan 31 untuk target bulanan",
}

func validateInput(v *validator.Validate, in UpsertInput) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("reporttargets: validate: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// normalize drops the anchor day that does not belong to the schedule kind.
func normalize(in UpsertInput) UpsertInput {
	in.ReportType = strings.TrimSpace(in.ReportType)
	switch compliance.ScheduleKind(in.TargetType) {
	case compliance.ScheduleWeekly:
		in.DayOfMonth = nil
	case compliance.ScheduleMonthly:
		in.DayOfWeek = nil
	default:
		in.DayOfWeek = nil
		in.DayOfMonth = nil
	}
	return in
}
