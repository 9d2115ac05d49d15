package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAttendanceFinalize settles unmarked attendance for a finished day.
	TaskAttendanceFinalize = "attendance:finalize"
)

// AttendanceFinalizePayload names the day to settle. An empty date means the
// previous day in the timezone of record.
type AttendanceFinalizePayload struct {
	Date string `json:"date,omitempty"`
}

// NewAttendanceFinalizeTask constructs an Asynq task for the nightly run.
func NewAttendanceFinalizeTask(payload AttendanceFinalizePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAttendanceFinalize, data, asynq.Queue(QueueDefault)), nil
}
