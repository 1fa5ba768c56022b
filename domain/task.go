package domain

import "time"

// Task represents a user-owned learning item.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Completed
}

// Filter selects a subset of tasks by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps user input to a Filter. An empty value means FilterAll.
func ParseFilter(value string) (Filter, error) {
	switch Filter(value) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", NewError(ErrCodeInvalid, "unknown filter "+value)
	}
}

// Match reports whether the task belongs to the filtered subset.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Progress summarizes completion over a task set.
type Progress struct {
	CompletedCount int     `json:"completed_count"`
	Total          int     `json:"total"`
	Percent        float64 `json:"percent"`
}

// ComputeProgress counts completed tasks. Percent is 0 for an empty set.
func ComputeProgress(tasks []Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			p.CompletedCount++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.CompletedCount) / float64(p.Total) * 100
	}
	return p
}
