package chunkstore

import (
	"context"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

// Store holds normalized document fragments with language and section
// metadata. Writes are serialized per document id; reads may run
// concurrently with each other and with the query pipeline.
type Store interface {
	PutDocument(ctx context.Context, doc policyModel.Document) error
	GetDocument(ctx context.Context, docId string) (policyModel.Document, bool)
	GetChunk(ctx context.Context, chunkId string) (policyModel.Chunk, bool)
	Chunks(ctx context.Context, docId string) ([]policyModel.Chunk, error)
	// Documents lists ingested document headers, chunks omitted.
	Documents(ctx context.Context) ([]policyModel.Document, error)
	DeleteDocument(ctx context.Context, docId string) error
}
