package repository

import (
	"context"

	"github.com/fastygo/learnpath/domain"
)

// CandidateRepository keeps the unsaved output of the latest generation per user.
type CandidateRepository interface {
	Get(ctx context.Context, userID string) (*domain.CandidateList, error)
	Save(ctx context.Context, userID string, list *domain.CandidateList) error
	// Remove drops one occurrence of each title from the stored list.
	Remove(ctx context.Context, userID string, titles []string) error
	Delete(ctx context.Context, userID string) error
}
