package broker

import (
	"time"

	"github.com/google/uuid"
)

// TaskDueV1 is the wire payload published when a task is claimed as due
// (spec §6.3). Field names and casing are part of the wire contract.
type TaskDueV1 struct {
	TaskID       uuid.UUID `json:"taskId"`
	Title        string    `json:"title"`
	DueDateUTC   time.Time `json:"dueDateUtc"`
	TimestampUTC time.Time `json:"timestampUtc"`
}
