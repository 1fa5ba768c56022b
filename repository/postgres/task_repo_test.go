package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/repository"
	"github.com/fastygo/learnpath/repository/postgres"
)

var taskColumns = []string{"id", "user_id", "title", "category", "completed", "created_at"}

func TestTaskRepository_List(t *testing.T) {
	t.Run("Should list tasks scoped by user newest first", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		now := time.Now()
		rows := mockPool.NewRows(taskColumns).
			AddRow("t2", "u1", "Write code", "go", false, now).
			AddRow("t1", "u1", "Read docs", "go", true, now.Add(-time.Minute))
		mockPool.ExpectQuery(`SELECT id, user_id, title, category, completed, created_at FROM tasks WHERE user_id = \$1 ORDER BY created_at DESC, seq DESC`).
			WithArgs("u1").
			WillReturnRows(rows)

		tasks, err := repo.List(context.Background(), repository.TaskFilter{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "t2", tasks[0].ID)
		assert.True(t, tasks[1].Completed)
		assert.Equal(t, "go", tasks[1].Category)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should add the completion filter", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		done := true
		mockPool.ExpectQuery(`FROM tasks WHERE user_id = \$1 AND completed = \$2`).
			WithArgs("u1", true).
			WillReturnRows(mockPool.NewRows(taskColumns))

		tasks, err := repo.List(context.Background(), repository.TaskFilter{UserID: "u1", Completed: &done})
		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should refuse an unscoped listing", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)

		_, err = repo.List(context.Background(), repository.TaskFilter{})
		assert.ErrorIs(t, err, domain.ErrAuthorizationRequired)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTaskRepository_CreateBatch(t *testing.T) {
	t.Run("Should insert every row in one transaction", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		now := time.Now()

		mockPool.ExpectBegin()
		mockPool.ExpectQuery("INSERT INTO tasks").
			WithArgs(pgxmock.AnyArg(), "u1", "Read docs", "go", false).
			WillReturnRows(mockPool.NewRows([]string{"created_at"}).AddRow(now))
		mockPool.ExpectQuery("INSERT INTO tasks").
			WithArgs(pgxmock.AnyArg(), "u1", "Write code", "go", false).
			WillReturnRows(mockPool.NewRows([]string{"created_at"}).AddRow(now))
		mockPool.ExpectCommit()

		created, err := repo.CreateBatch(context.Background(), []domain.Task{
			{UserID: "u1", Title: "Read docs", Category: "go"},
			{UserID: "u1", Title: "Write code", Category: "go"},
		})
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.NotEmpty(t, created[0].ID)
		assert.Equal(t, now, created[1].CreatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should roll back when any insert fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		boom := errors.New("constraint violation")

		mockPool.ExpectBegin()
		mockPool.ExpectQuery("INSERT INTO tasks").
			WithArgs(pgxmock.AnyArg(), "u1", "Read docs", "go", false).
			WillReturnRows(mockPool.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mockPool.ExpectQuery("INSERT INTO tasks").
			WithArgs(pgxmock.AnyArg(), "u1", "Write code", "go", false).
			WillReturnError(boom)
		mockPool.ExpectRollback()

		created, err := repo.CreateBatch(context.Background(), []domain.Task{
			{UserID: "u1", Title: "Read docs", Category: "go"},
			{UserID: "u1", Title: "Write code", Category: "go"},
		})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, created)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTaskRepository_Mutations(t *testing.T) {
	t.Run("Should scope completion updates by id and user", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		mockPool.ExpectExec(`UPDATE tasks SET completed = \$1 WHERE id = \$2 AND user_id = \$3`).
			WithArgs(true, "t1", "u1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.SetCompleted(context.Background(), "u1", "t1", true))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should report not found when another user owns the task", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		mockPool.ExpectExec(`UPDATE tasks SET title = \$1 WHERE id = \$2 AND user_id = \$3`).
			WithArgs("New", "t1", "u2").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = repo.Rename(context.Background(), "u2", "t1", "New")
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should delete scoped by id and user", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := postgres.NewTaskRepository(mockPool)
		mockPool.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
			WithArgs("t1", "u1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), "u1", "t1"))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
