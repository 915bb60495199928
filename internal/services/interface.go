package services

import "context"

// TextEncoder is an interface for the external text-to-embedding encoder.
// The returned vector has the same dimensionality as the stored image
// embeddings.
type TextEncoder interface {
	// Encode returns the embedding for a given text.
	Encode(ctx context.Context, text string) ([]float32, error)
}
