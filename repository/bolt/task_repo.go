package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/repository"
)

var rootBucket = []byte("tasks")

// record is the stored form of a task; Seq breaks ties between rows created in one batch.
type record struct {
	domain.Task
	Seq uint64 `json:"seq"`
}

// Store is an embedded task repository: one nested bucket per user, keyed by task id.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open initializes the BoltDB file and ensures the root bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

var _ repository.TaskRepository = (*Store)(nil)

func (s *Store) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if filter.UserID == "" {
		return nil, domain.ErrAuthorizationRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(filter.UserID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if filter.Completed != nil && rec.Completed != *filter.Completed {
				return nil
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Seq > records[j].Seq
	})

	tasks := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.Task)
	}
	return tasks, nil
}

// CreateBatch writes every task in a single bolt transaction.
func (s *Store) CreateBatch(ctx context.Context, tasks []domain.Task) ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	createdAt := s.now()
	created := make([]domain.Task, 0, len(tasks))
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(rootBucket)
		for _, task := range tasks {
			if task.UserID == "" {
				return domain.ErrAuthorizationRequired
			}
			b, err := root.CreateBucketIfNotExists([]byte(task.UserID))
			if err != nil {
				return err
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if task.ID == "" {
				task.ID = uuid.NewString()
			}
			task.CreatedAt = createdAt

			payload, err := json.Marshal(record{Task: task, Seq: seq})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(task.ID), payload); err != nil {
				return err
			}
			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	return s.mutate(ctx, userID, id, func(rec *record) { rec.Completed = completed })
}

func (s *Store) Rename(ctx context.Context, userID, id, title string) error {
	return s.mutate(ctx, userID, id, func(rec *record) { rec.Title = title })
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(userID))
		if b == nil || b.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (s *Store) mutate(ctx context.Context, userID, id string, apply func(*record)) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(userID))
		if b == nil {
			return domain.ErrTaskNotFound
		}
		raw := b.Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		apply(&rec)
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), payload)
	})
}

// Ping verifies the database is readable.
func (s *Store) Ping(context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(rootBucket) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
