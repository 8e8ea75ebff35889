package compliance

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistry(t *testing.T) {
	require.NoError(t, ValidateRegistry())
}

func TestLookupKnownTypes(t *testing.T) {
	info, err := Lookup(ReportSOHInventory)
	require.NoError(t, err)
	assert.Equal(t, "soh_inventory_reports", info.Table)
	assert.Equal(t, "report_date", info.DateColumn)
	assert.Equal(t, "submission_date", info.SubmittedColumn)
	assert.Equal(t, "SOH Inventory Weekly", info.DisplayName)
}

func TestLookupUnknownTypeIsConfigurationError(t *testing.T) {
	_, err := Lookup("night_audit")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownReportType))
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.False(t, Known("night_audit"))
}

func TestLabelFallsBackToIdentifier(t *testing.T) {
	assert.Equal(t, "After Closing GL Monthly", Label(ReportGLClosing))
	assert.Equal(t, "night_audit", Label("night_audit"))
}

func TestReportTypesSorted(t *testing.T) {
	types := ReportTypes()
	require.Len(t, types, 6)
	assert.Equal(t, ReportAPAging, types[0].Type)
	assert.Equal(t, ReportSOHInventory, types[5].Type)
}

func TestStatusJSON(t *testing.T) {
	raw, err := json.Marshal([]Status{StatusWaiting, StatusOnTime, StatusLate, StatusProcessingError})
	require.NoError(t, err)
	assert.Equal(t, `["Menunggu","Tepat Waktu","Terlambat","Processing Error"]`, string(raw))

	var decoded Status
	require.NoError(t, json.Unmarshal([]byte(`"Tepat Waktu"`), &decoded))
	assert.Equal(t, StatusOnTime, decoded)
	assert.Error(t, json.Unmarshal([]byte(`"Submitted"`), &decoded))

	_, err = json.Marshal(StatusUnknown)
	assert.Error(t, err)
}

func TestStatusRecordRoundTripKeepsInstants(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	last := time.Date(2024, time.March, 1, 8, 30, 0, 0, jakarta)
	next := time.Date(2024, time.March, 2, 9, 0, 0, 0, jakarta)
	rec := StatusRecord{HotelID: 7, HotelName: "Hotel C", ReportType: ReportIncomeAudit, ReportName: "Income Audit Daily", Status: StatusOnTime, LastSubmission: &last, NextDeadline: &next}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_submission":"2024-03-01T01:30:00.000Z"`)

	var decoded StatusRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.LastSubmission.Equal(last))
	assert.True(t, decoded.NextDeadline.Equal(next))
	assert.Equal(t, StatusOnTime, decoded.Status)
}
