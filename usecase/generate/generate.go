package generate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/pkg/keylock"
	"github.com/fastygo/learnpath/pkg/tasklist"
	"github.com/fastygo/learnpath/repository"
	"github.com/fastygo/learnpath/usecase"
	taskUC "github.com/fastygo/learnpath/usecase/task"
)

// Sessions resolves the task Reconciler for a user.
type Sessions interface {
	Session(ctx context.Context, userID string) (*taskUC.Reconciler, error)
}

type UseCase struct {
	generator  usecase.Generator
	candidates repository.CandidateRepository
	sessions   Sessions
	recorder   usecase.Recorder
	logger     *zap.Logger
	now        func() time.Time
	// owners serializes changes to one user's candidate list.
	owners *keylock.Locker
}

func New(
	generator usecase.Generator,
	candidates repository.CandidateRepository,
	sessions Sessions,
	recorder usecase.Recorder,
	logger *zap.Logger,
) *UseCase {
	if recorder == nil {
		recorder = usecase.NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		generator:  generator,
		candidates: candidates,
		sessions:   sessions,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
		owners:     keylock.New(),
	}
}

// Generate asks the model for tasks on topic and stores the normalized result as the
// user's candidate list, replacing any previous one.
func (uc *UseCase) Generate(ctx context.Context, userID, topic string) (*domain.CandidateList, error) {
	if userID == "" {
		return nil, domain.ErrAuthorizationRequired
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ErrEmptyTopic
	}

	raw, err := uc.generator.Generate(ctx, tasklist.Prompt(topic))
	if err == nil && strings.TrimSpace(raw) == "" {
		err = domain.ErrEmptyGeneration
	}
	uc.recorder.ObserveGeneration(err)
	if err != nil {
		uc.logger.Error("task generation failed", zap.String("topic", topic), zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeGeneration, domain.MsgGenerationFailed, err)
	}

	tasks, err := tasklist.Normalize(raw, topic)
	if err != nil {
		return nil, err
	}

	list := &domain.CandidateList{Topic: topic, Tasks: tasks, GeneratedAt: uc.now()}
	unlock := uc.owners.Lock(userID)
	err = uc.candidates.Save(ctx, userID, list)
	unlock()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to keep generated tasks", err)
	}

	uc.logger.Info("tasks generated", zap.String("user_id", userID), zap.String("topic", topic))
	return list, nil
}

// Candidates returns the user's unsaved generated tasks.
func (uc *UseCase) Candidates(ctx context.Context, userID string) (*domain.CandidateList, error) {
	if userID == "" {
		return nil, domain.ErrAuthorizationRequired
	}
	return uc.candidates.Get(ctx, userID)
}

// Discard drops the user's candidate list.
func (uc *UseCase) Discard(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrAuthorizationRequired
	}
	unlock := uc.owners.Lock(userID)
	defer unlock()
	return uc.candidates.Delete(ctx, userID)
}

// Save persists the chosen candidates (every remaining one when all is set) under the
// list's topic and drops them from the list. Titles that are not pending candidates are
// rejected. Saves for one user run one at a time.
func (uc *UseCase) Save(ctx context.Context, userID string, titles []string, all bool) ([]domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrAuthorizationRequired
	}
	unlock := uc.owners.Lock(userID)
	defer unlock()

	list, err := uc.candidates.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if all {
		titles = list.Tasks
	}
	if err := checkPending(list, titles); err != nil {
		return nil, err
	}

	session, err := uc.sessions.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := session.Create(ctx, titles, list.Topic)
	if err != nil {
		return nil, err
	}
	if err := uc.candidates.Remove(ctx, userID, titles); err != nil {
		uc.logger.Warn("failed to drop saved candidates", zap.String("user_id", userID), zap.Error(err))
	}
	return created, nil
}

func checkPending(list *domain.CandidateList, titles []string) error {
	remaining := list
	for _, title := range titles {
		if !remaining.Contains(title) {
			return domain.NewError(domain.ErrCodeInvalid, "not a generated task: "+title)
		}
		remaining = remaining.Without([]string{title})
	}
	return nil
}
