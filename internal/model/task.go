package model

import "time"

// Task status as tracked by the in-memory registry. "waiting" and
// "processing" are local bookkeeping of whether polling has started, not
// guarantees of provider-side progress.
type TaskStatus string

const (
	TaskStatusWaiting    TaskStatus = "waiting"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further status transitions are expected.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskState is the ephemeral per-task entry owned by the task registry.
type TaskState struct {
	TaskID      string     `json:"taskId"`
	Status      TaskStatus `json:"status"`
	Message     string     `json:"message"`
	LastUpdated time.Time  `json:"lastUpdated"`
}
