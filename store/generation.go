package store

import "context"

// GenerationState is the candidate-generation progress for one user. It is
// persisted so progress survives restarts and scales across instances.
type GenerationState string

const (
	GenerationPending  GenerationState = "pending"
	GenerationRunning  GenerationState = "running"
	GenerationComplete GenerationState = "complete"
	GenerationFailed   GenerationState = "failed"
)

// GenerationStatus is the persisted per-user generation record.
type GenerationStatus struct {
	UUID        string
	State       GenerationState
	StoredCount int32
	UpdatedTs   int64
}

func (s *Store) UpsertGenerationStatus(ctx context.Context, upsert *GenerationStatus) (*GenerationStatus, error) {
	return s.driver.UpsertGenerationStatus(ctx, upsert)
}

// GetGenerationStatus returns the generation record, or nil when the user has
// never triggered generation.
func (s *Store) GetGenerationStatus(ctx context.Context, userUUID string) (*GenerationStatus, error) {
	return s.driver.GetGenerationStatus(ctx, userUUID)
}
