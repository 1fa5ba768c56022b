package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/repository"
)

// fakeStore is an in-memory TaskRepository with per-operation failure injection.
type fakeStore struct {
	mu    sync.Mutex
	rows  []domain.Task
	fail  map[string]error
	calls map[string]int
	clock time.Time
	hook  func(op string)
}

func newFakeStore(rows ...domain.Task) *fakeStore {
	return &fakeStore{
		rows:  rows,
		fail:  map[string]error{},
		calls: map[string]int{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	err := f.fail[op]
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return err
}

func (f *fakeStore) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Task, 0)
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == filter.UserID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBatch(_ context.Context, tasks []domain.Task) ([]domain.Task, error) {
	if err := f.enter("create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	created := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		t.ID = uuid.NewString()
		t.CreatedAt = f.clock
		created = append(created, t)
	}
	f.rows = append(f.rows, created...)
	return created, nil
}

func (f *fakeStore) SetCompleted(_ context.Context, userID, id string, completed bool) error {
	if err := f.enter("toggle"); err != nil {
		return err
	}
	return f.update(userID, id, func(t *domain.Task) { t.Completed = completed })
}

func (f *fakeStore) Rename(_ context.Context, userID, id, title string) error {
	if err := f.enter("rename"); err != nil {
		return err
	}
	return f.update(userID, id, func(t *domain.Task) { t.Title = title })
}

func (f *fakeStore) Delete(_ context.Context, userID, id string) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.rows {
		if t.ID == id && t.UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (f *fakeStore) update(userID, id string, apply func(*domain.Task)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			apply(&f.rows[i])
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (f *fakeStore) setFailure(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeStore) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// countingRecorder tallies store observations.
type countingRecorder struct {
	mu       sync.Mutex
	ok, fail map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{ok: map[string]int{}, fail: map[string]int{}}
}

func (c *countingRecorder) ObserveStore(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail[op]++
		return
	}
	c.ok[op]++
}

func (c *countingRecorder) ObserveGeneration(error) {}
