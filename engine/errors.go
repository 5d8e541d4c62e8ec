package engine

import "errors"

var (
	// ErrEmbeddingBackend marks a failed or timed-out embedding provider call.
	// It is fatal to the requesting operation; the engine never substitutes a
	// generated vector for a failed backend call.
	ErrEmbeddingBackend = errors.New("embedding backend failure")

	// ErrDegenerateEmbedding is returned when a preference update produces a
	// near-zero vector that cannot be normalized.
	ErrDegenerateEmbedding = errors.New("degenerate embedding: near-zero norm")

	// ErrStaleVersion is returned when a concurrent writer advanced the user
	// embedding version first. Callers re-read and retry.
	ErrStaleVersion = errors.New("stale user embedding version")

	// ErrProfileIncomplete is returned when candidate generation is requested
	// before the onboarding profile is marked complete.
	ErrProfileIncomplete = errors.New("user profile incomplete")
)
