// Package embedding provides vector embedding generation for article text.
package embedding

import "context"

// Provider generates fixed-length embeddings from text.
type Provider interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the vector dimensions the model produces.
	Dimensions() int
}
