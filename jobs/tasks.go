package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRosterImport is the task type for importing a teacher roster.
	TaskTypeRosterImport = "roster:import"
)

// RosterImportPayload carries a queued roster import. The CSV travels in the
// payload so the worker needs no shared filesystem with the API.
type RosterImportPayload struct {
	JobID       string `json:"job_id"`
	RequestedBy int64  `json:"requested_by"`
	CSV         string `json:"csv"`
}

// NewRosterImportTask constructs an Asynq task.
func NewRosterImportTask(payload RosterImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRosterImport, data), nil
}
