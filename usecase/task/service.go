package task

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/fastygo/learnpath/domain"
)

const defaultSessionCacheSize = 1024

// Service keeps one loaded Reconciler per active user.
type Service struct {
	deps     Dependencies
	sessions *lru.Cache[string, *Reconciler]
	logger   *zap.Logger
}

func NewService(deps Dependencies, cacheSize int) (*Service, error) {
	deps = deps.withDefaults()
	if cacheSize <= 0 {
		cacheSize = defaultSessionCacheSize
	}
	sessions, err := lru.New[string, *Reconciler](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		deps:     deps,
		sessions: sessions,
		logger:   deps.Logger,
	}, nil
}

// Session returns the user's Reconciler, loading it on first use. Failed loads are
// not cached.
func (s *Service) Session(ctx context.Context, userID string) (*Reconciler, error) {
	if userID == "" {
		return nil, domain.ErrAuthorizationRequired
	}
	if r, ok := s.sessions.Get(userID); ok {
		return r, nil
	}

	r := NewReconciler(userID, s.deps)
	if _, err := r.Load(ctx); err != nil {
		return nil, err
	}
	if existing, found, _ := s.sessions.PeekOrAdd(userID, r); found {
		return existing, nil
	}
	s.logger.Debug("task session opened", zap.String("user_id", userID))
	return r, nil
}

// Refresh reloads every cached session so out-of-band store changes become visible.
func (s *Service) Refresh(ctx context.Context) error {
	var result error
	for _, userID := range s.sessions.Keys() {
		r, ok := s.sessions.Peek(userID)
		if !ok {
			continue
		}
		if _, err := r.Load(ctx); err != nil {
			result = errors.Join(result, err)
		}
	}
	return result
}

// Forget drops the cached session for userID.
func (s *Service) Forget(userID string) {
	s.sessions.Remove(userID)
}

func (s *Service) Len() int {
	return s.sessions.Len()
}
