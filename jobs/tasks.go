package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskComplianceScan evaluates every hotel and target for metrics and alerts.
	TaskComplianceScan = "compliance:scan"

	complianceScanMaxRetry = 3
	complianceScanTimeout  = 2 * time.Minute
)

// ComplianceScanPayload identifies one scan run in logs.
type ComplianceScanPayload struct {
	RunID  string `json:"run_id"`
	Reason string `json:"reason,omitempty"`
}

// NewComplianceScanTask constructs a scan task. Cron registrations leave RunID
// empty so each run is identified by its asynq task id.
func NewComplianceScanTask(payload ComplianceScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskComplianceScan, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(complianceScanMaxRetry),
		asynq.Timeout(complianceScanTimeout),
	), nil
}

func runID(ctx context.Context, payload ComplianceScanPayload) string {
	if payload.RunID != "" {
		return payload.RunID
	}
	if id, ok := asynq.GetTaskID(ctx); ok {
		return id
	}
	return uuid.NewString()
}
