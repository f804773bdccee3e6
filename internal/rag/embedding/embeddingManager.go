package embedding

import "context"

// Embedder maps text into the shared multilingual vector space. Queries and
// chunks use the same space so a Marathi question can land on English
// policy text.
type Embedder interface {
	GetQueryEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
