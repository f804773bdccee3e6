package vectorDB

import (
	"context"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

type ChunkHit struct {
	ChunkId string
	DocId   string
	Score   float64
}

type DocHit struct {
	DocId string
	Score float64
}

// ChunkFilter restricts a chunk search to the documents and section labels
// the coarser retrieval passes have already admitted.
type ChunkFilter struct {
	DocIds   []string
	Sections []policyModel.SectionLabel
}

// VectorIndex is the shared multilingual embedding space. Indexing the same
// id twice overwrites; a vector of the wrong dimensionality is rejected with
// policyModel.InvalidVectorError.
type VectorIndex interface {
	IndexChunk(ctx context.Context, chunk policyModel.Chunk) error
	IndexDocument(ctx context.Context, doc policyModel.Document, vector []float32) error
	SearchChunks(ctx context.Context, vector []float32, k uint64, filter ChunkFilter) ([]ChunkHit, error)
	SearchDocuments(ctx context.Context, vector []float32, n uint64) ([]DocHit, error)
	DeleteDocument(ctx context.Context, docId string) error
}

// AnswerCache short-circuits the pipeline for semantically equivalent
// repeat questions.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (policyModel.Answer, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer policyModel.Answer) error
}
