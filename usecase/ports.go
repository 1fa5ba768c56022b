package usecase

import "context"

// Generator abstracts the generative-text service so use cases stay provider-agnostic.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Operation names reported to a Recorder.
const (
	OperationLoad   = "load"
	OperationCreate = "create"
	OperationToggle = "toggle"
	OperationRename = "rename"
	OperationDelete = "delete"
)

// Recorder observes outcomes of store operations and generations.
type Recorder interface {
	ObserveStore(operation string, err error)
	ObserveGeneration(err error)
}

// NopRecorder discards observations.
type NopRecorder struct{}

func (NopRecorder) ObserveStore(string, error) {}
func (NopRecorder) ObserveGeneration(error)    {}
