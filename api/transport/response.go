package transport

import (
	"encoding/json"

	"github.com/fastygo/learnpath/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  any    `json:"error,omitempty"`
	Meta   any    `json:"meta,omitempty"`
}

// TaskList is the filtered view together with progress over all tasks.
type TaskList struct {
	Tasks    []domain.Task   `json:"tasks"`
	Progress domain.Progress `json:"progress"`
}

func NewSuccess(data any, meta any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code string, err any, meta any) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// NewTaskList never reports a nil task slice so clients always see an array.
func NewTaskList(tasks []domain.Task, progress domain.Progress) TaskList {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return TaskList{Tasks: tasks, Progress: progress}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
