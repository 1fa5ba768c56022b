package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fastygo/learnpath/domain"
	"github.com/fastygo/learnpath/usecase"
)

const namespace = "learnpath"

// Recorder counts store operations and generations by outcome.
type Recorder struct {
	store       *prometheus.CounterVec
	generations *prometheus.CounterVec
}

var _ usecase.Recorder = (*Recorder)(nil)

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		store: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Task store operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Task generation requests by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{r.store, r.generations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObserveStore(operation string, err error) {
	r.store.WithLabelValues(operation, outcome(err)).Inc()
}

func (r *Recorder) ObserveGeneration(err error) {
	r.generations.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return "not_found"
	case domain.IsDomainError(err, domain.ErrCodeEmptyGeneration):
		return "empty"
	default:
		return "error"
	}
}
