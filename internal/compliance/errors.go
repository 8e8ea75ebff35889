package compliance

import (
	"errors"
	"fmt"
)

// ErrUnknownReportType indicates a report type missing from the registry.
var ErrUnknownReportType = errors.New("compliance: unknown report type")

// ConfigurationError reports a malformed or incomplete report target.
type ConfigurationError struct {
	ReportType ReportType
	Field      string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("compliance: report type %q misconfigured: %v", e.ReportType, e.Err)
	}
	return fmt.Sprintf("compliance: report type %q field %s: %v", e.ReportType, e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// LookupFailure wraps an error raised by the submission lookup collaborator.
type LookupFailure struct {
	ReportType ReportType
	HotelID    int64
	Err        error
}

func (e *LookupFailure) Error() string {
	return fmt.Sprintf("compliance: submission lookup %s hotel %d: %v", e.ReportType, e.HotelID, e.Err)
}

func (e *LookupFailure) Unwrap() error { return e.Err }

func configError(rt ReportType, field string, err error) error {
	return &ConfigurationError{ReportType: rt, Field: field, Err: err}
}
