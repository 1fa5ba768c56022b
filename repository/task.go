package repository

import (
	"context"

	"github.com/fastygo/learnpath/domain"
)

// TaskFilter narrows a listing. Every listing is scoped to one user.
type TaskFilter struct {
	UserID    string
	Completed *bool
}

// TaskRepository is the per-user persisted task collection. Every write is scoped by
// both task id and user id.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// CreateBatch inserts all tasks or none of them and returns the stored rows.
	CreateBatch(ctx context.Context, tasks []domain.Task) ([]domain.Task, error)
	SetCompleted(ctx context.Context, userID, id string, completed bool) error
	Rename(ctx context.Context, userID, id, title string) error
	Delete(ctx context.Context, userID, id string) error
}
