package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeClosureReport renders the month-end summary PDF after a close.
	TaskTypeClosureReport = "closure:report"
	// TaskTypeOverdueScan marks installment plans past their due date.
	TaskTypeOverdueScan = "cicilan:overdue_scan"
	// TaskTypeModalIntegrity recomputes modal balances from the ledger.
	TaskTypeModalIntegrity = "modal:integrity"
)

// ClosureReportPayload identifies the closed period to report on.
type ClosureReportPayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewClosureReportTask constructs the closure report task.
func NewClosureReportTask(payload ClosureReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeClosureReport, data), nil
}

// NewOverdueScanTask constructs the nightly overdue sweep task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil)
}

// NewModalIntegrityTask constructs the ledger integrity check task.
func NewModalIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskTypeModalIntegrity, nil)
}
