package compliance

import (
	"fmt"
	"regexp"
	"sort"
)

// ReportType identifies a submitted report family.
type ReportType string

const (
	ReportIncomeAudit   ReportType = "income_audit"
	ReportARAging       ReportType = "ar_aging"
	ReportAPAging       ReportType = "ap_aging"
	ReportSOHInventory  ReportType = "soh_inventory"
	ReportServiceCharge ReportType = "service_charge"
	ReportGLClosing     ReportType = "gl_closing"
)

// ReportTypeInfo describes where submissions of a report type are stored.
type ReportTypeInfo struct {
	Type            ReportType
	Table           string
	DateColumn      string
	SubmittedColumn string
	DisplayName     string
}

var registry = map[ReportType]ReportTypeInfo{
	ReportIncomeAudit:   entry(ReportIncomeAudit, "Income Audit Daily"),
	ReportARAging:       entry(ReportARAging, "AR Aging Weekly"),
	ReportAPAging:       entry(ReportAPAging, "AP Aging Weekly"),
	ReportSOHInventory:  entry(ReportSOHInventory, "SOH Inventory Weekly"),
	ReportServiceCharge: entry(ReportServiceCharge, "Service Charge Monthly"),
	ReportGLClosing:     entry(ReportGLClosing, "After Closing GL Monthly"),
}

func entry(rt ReportType, name string) ReportTypeInfo {
	return ReportTypeInfo{
		Type:            rt,
		Table:           string(rt) + "_reports",
		DateColumn:      "report_date",
		SubmittedColumn: "submission_date",
		DisplayName:     name,
	}
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateRegistry checks every registry entry once at startup.
func ValidateRegistry() error {
	for rt, info := range registry {
		if info.Type != rt {
			return fmt.Errorf("compliance: registry key %q holds entry for %q", rt, info.Type)
		}
		for _, ident := range []string{string(rt), info.Table, info.DateColumn, info.SubmittedColumn} {
			if !identifierPattern.MatchString(ident) {
				return fmt.Errorf("compliance: registry entry %q has unsafe identifier %q", rt, ident)
			}
		}
		if info.DisplayName == "" {
			return fmt.Errorf("compliance: registry entry %q has no display name", rt)
		}
	}
	return nil
}

// Lookup returns the registry entry for rt.
func Lookup(rt ReportType) (ReportTypeInfo, error) {
	info, ok := registry[rt]
	if !ok {
		return ReportTypeInfo{}, configError(rt, "report_type", ErrUnknownReportType)
	}
	return info, nil
}

// Known reports whether rt is registered.
func Known(rt ReportType) bool {
	_, ok := registry[rt]
	return ok
}

// Label returns the display name for rt, falling back to the raw identifier.
func Label(rt ReportType) string {
	if info, ok := registry[rt]; ok {
		return info.DisplayName
	}
	return string(rt)
}

// ReportTypes lists registered report types in lexical order.
func ReportTypes() []ReportTypeInfo {
	out := make([]ReportTypeInfo, 0, len(registry))
	for _, info := range registry {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
