package task

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/pkg/keylock"
	"github.com/fastygo/learnpath/repository"
	"github.com/fastygo/learnpath/usecase"
)

// Dependencies are the collaborators shared by every Reconciler.
type Dependencies struct {
	Tasks    repository.TaskRepository
	Recorder usecase.Recorder
	Logger   *zap.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Recorder == nil {
		d.Recorder = usecase.NopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Reconciler mirrors one user's persisted tasks in memory. A mutation reaches local
// state only after the store confirms it; a rejected mutation leaves local state as it was.
type Reconciler struct {
	userID string
	deps   Dependencies
	logger *zap.Logger

	mu    sync.RWMutex
	state []domain.Task

	inflight *keylock.Locker
}

func NewReconciler(userID string, deps Dependencies) *Reconciler {
	deps = deps.withDefaults()
	return &Reconciler{
		userID:   userID,
		deps:     deps,
		logger:   deps.Logger.With(zap.String("user_id", userID)),
		inflight: keylock.New(),
	}
}

func (r *Reconciler) UserID() string {
	return r.userID
}

// Load replaces local state with the user's tasks, newest first.
func (r *Reconciler) Load(ctx context.Context) ([]domain.Task, error) {
	if r.userID == "" {
		return nil, domain.ErrAuthorizationRequired
	}

	tasks, err := r.deps.Tasks.List(ctx, repository.TaskFilter{UserID: r.userID})
	r.deps.Recorder.ObserveStore(usecase.OperationLoad, err)
	if err != nil {
		r.logger.Warn("task load failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeFetch, domain.MsgFetchFailed, err)
	}

	r.mu.Lock()
	r.state = cloneTasks(tasks)
	r.mu.Unlock()
	return tasks, nil
}

// Create persists titles as one batch under category. An empty batch does nothing.
func (r *Reconciler) Create(ctx context.Context, titles []string, category string) ([]domain.Task, error) {
	if r.userID == "" {
		return nil, domain.ErrAuthorizationRequired
	}
	if len(titles) == 0 {
		return nil, nil
	}

	batch := make([]domain.Task, 0, len(titles))
	for _, title := range titles {
		batch = append(batch, domain.Task{UserID: r.userID, Title: title, Category: category})
	}

	var created []domain.Task
	err := r.commit(ctx, usecase.OperationCreate, domain.ErrCodeSave, domain.MsgSaveFailed,
		func(ctx context.Context) error {
			rows, err := r.deps.Tasks.CreateBatch(ctx, batch)
			created = newestFirst(rows)
			return err
		},
		func(state []domain.Task) []domain.Task {
			next := make([]domain.Task, 0, len(created)+len(state))
			next = append(next, created...)
			return append(next, state...)
		},
	)
	if err != nil {
		return nil, err
	}
	return cloneTasks(created), nil
}

// ToggleCompletion flips the completed flag of task id.
func (r *Reconciler) ToggleCompletion(ctx context.Context, id string) (domain.Task, error) {
	if r.userID == "" {
		return domain.Task{}, domain.ErrAuthorizationRequired
	}
	unlock := r.inflight.Lock(id)
	defer unlock()

	current, ok := r.find(id)
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	target := !current.Completed

	err := r.commit(ctx, usecase.OperationToggle, domain.ErrCodeUpdate, domain.MsgUpdateFailed,
		func(ctx context.Context) error {
			return r.deps.Tasks.SetCompleted(ctx, r.userID, id, target)
		},
		updateByID(id, func(t *domain.Task) { t.Completed = target }),
	)
	if err != nil {
		return domain.Task{}, err
	}
	current.Completed = target
	return current, nil
}

// Rename sets the title of task id. Empty titles are accepted here; callers that
// need a non-empty title validate before calling.
func (r *Reconciler) Rename(ctx context.Context, id, title string) (domain.Task, error) {
	if r.userID == "" {
		return domain.Task{}, domain.ErrAuthorizationRequired
	}
	unlock := r.inflight.Lock(id)
	defer unlock()

	current, ok := r.find(id)
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	err := r.commit(ctx, usecase.OperationRename, domain.ErrCodeUpdate, domain.MsgUpdateFailed,
		func(ctx context.Context) error {
			return r.deps.Tasks.Rename(ctx, r.userID, id, title)
		},
		updateByID(id, func(t *domain.Task) { t.Title = title }),
	)
	if err != nil {
		return domain.Task{}, err
	}
	current.Title = title
	return current, nil
}

// Delete removes task id.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	if r.userID == "" {
		return domain.ErrAuthorizationRequired
	}
	unlock := r.inflight.Lock(id)
	defer unlock()

	if _, ok := r.find(id); !ok {
		return domain.ErrTaskNotFound
	}
	return r.commit(ctx, usecase.OperationDelete, domain.ErrCodeDelete, domain.MsgDeleteFailed,
		func(ctx context.Context) error {
			return r.deps.Tasks.Delete(ctx, r.userID, id)
		},
		func(state []domain.Task) []domain.Task {
			next := make([]domain.Task, 0, len(state))
			for _, t := range state {
				if t.ID != id {
					next = append(next, t)
				}
			}
			return next
		},
	)
}

// FilteredView returns the tasks matching filter in local order.
func (r *Reconciler) FilteredView(filter domain.Filter) []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view := make([]domain.Task, 0, len(r.state))
	for _, t := range r.state {
		if filter.Match(t) {
			view = append(view, t)
		}
	}
	return view
}

// Progress is recomputed from local state on every call.
func (r *Reconciler) Progress() domain.Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.ComputeProgress(r.state)
}

// commit issues remote and, once the store confirms it, applies mirror to local state.
func (r *Reconciler) commit(
	ctx context.Context,
	operation string,
	code domain.ErrorCode,
	message string,
	remote func(context.Context) error,
	mirror func([]domain.Task) []domain.Task,
) error {
	err := remote(ctx)
	r.deps.Recorder.ObserveStore(operation, err)
	if err != nil {
		r.logger.Warn("task operation rejected", zap.String("operation", operation), zap.Error(err))
		return domain.WrapError(code, message, err)
	}

	r.mu.Lock()
	r.state = mirror(r.state)
	r.mu.Unlock()
	return nil
}

func (r *Reconciler) find(id string) (domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.state {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

func updateByID(id string, apply func(*domain.Task)) func([]domain.Task) []domain.Task {
	return func(state []domain.Task) []domain.Task {
		next := cloneTasks(state)
		for i := range next {
			if next[i].ID == id {
				apply(&next[i])
			}
		}
		return next
	}
}

// newestFirst orders a confirmed batch the way the stores list it: created_at
// descending, later insertions first when timestamps tie.
func newestFirst(tasks []domain.Task) []domain.Task {
	sorted := make([]domain.Task, 0, len(tasks))
	for i := len(tasks) - 1; i >= 0; i-- {
		sorted = append(sorted, tasks[i])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return nil
	}
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	return out
}
