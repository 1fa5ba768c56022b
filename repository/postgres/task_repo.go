package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/repository"
)

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	psql        = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	taskColumns = []string{"id", "user_id", "title", "category", "completed", "created_at"}
)

type taskRepository struct {
	db DB
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(db DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.UserID == "" {
		return nil, domain.ErrAuthorizationRequired
	}

	builder := psql.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"user_id": filter.UserID}).
		OrderBy("created_at DESC", "seq DESC")
	if filter.Completed != nil {
		builder = builder.Where(sq.Eq{"completed": *filter.Completed})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.UserID == "" {
			_ = tx.Rollback(ctx)
			return nil, domain.ErrAuthorizationRequired
		}
		if task.ID == "" {
			task.ID = uuid.NewString()
		}

		query, args, err := psql.Insert("tasks").
			Columns("id", "user_id", "title", "category", "completed").
			Values(task.ID, task.UserID, task.Title, task.Category, task.Completed).
			Suffix("RETURNING created_at").
			ToSql()
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}

		var createdAt time.Time
		if err := tx.QueryRow(ctx, query, args...).Scan(&createdAt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
		task.CreatedAt = createdAt
		created = append(created, task)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *taskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	return r.update(ctx, userID, id, "completed", completed)
}

func (r *taskRepository) Rename(ctx context.Context, userID, id, title string) error {
	return r.update(ctx, userID, id, "title", title)
}

func (r *taskRepository) update(ctx context.Context, userID, id, column string, value any) error {
	query, args, err := psql.Update("tasks").
		Set(column, value).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	return r.execScoped(ctx, query, args...)
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	query, args, err := psql.Delete("tasks").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	return r.execScoped(ctx, query, args...)
}

func (r *taskRepository) execScoped(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Category,
		&task.Completed,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
