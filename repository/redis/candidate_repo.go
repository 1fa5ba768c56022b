package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/repository"
)

const maxRemoveAttempts = 5

type candidateRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewCandidateRepository creates a Redis-backed candidate list repository.
func NewCandidateRepository(client *redislib.Client, ttl time.Duration) repository.CandidateRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &candidateRepository{
		client: client,
		prefix: "candidates:",
		ttl:    ttl,
	}
}

func (r *candidateRepository) Get(ctx context.Context, userID string) (*domain.CandidateList, error) {
	result, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrCandidatesNotFound
		}
		return nil, err
	}
	return decode(result)
}

func (r *candidateRepository) Save(ctx context.Context, userID string, list *domain.CandidateList) error {
	if list == nil || userID == "" {
		return domain.ErrInvalidPayload
	}
	if list.GeneratedAt.IsZero() {
		list.GeneratedAt = time.Now()
	}

	payload, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(userID), payload, r.ttl).Err()
}

// Remove rewrites the list under WATCH so concurrent saves do not resurrect entries.
func (r *candidateRepository) Remove(ctx context.Context, userID string, titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	key := r.key(userID)

	txf := func(tx *redislib.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redislib.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		current, err := decode(raw)
		if err != nil {
			return err
		}
		next := current.Without(titles)

		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			if next.IsEmpty() {
				pipe.Del(ctx, key)
				return nil
			}
			payload, err := json.Marshal(next)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, payload, redislib.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxRemoveAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redislib.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("candidate list for %s changed concurrently", userID)
}

func (r *candidateRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}

func (r *candidateRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}

func decode(raw string) (*domain.CandidateList, error) {
	var list domain.CandidateList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return &list, nil
}
