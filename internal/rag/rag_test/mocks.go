package rag_test

import (
	"context"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	// Control fields to simulate different behaviors
	OnGetQueryEmbedding func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding    func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetQueryEmbedding != nil {
		return m.OnGetQueryEmbedding(ctx, query)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// MockAnswerCache implements vectorDB.AnswerCache
type MockAnswerCache struct {
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (policyModel.Answer, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer policyModel.Answer) error
}

func (m *MockAnswerCache) GetCachedAnswer(ctx context.Context, v []float32) (policyModel.Answer, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return policyModel.Answer{}, false, nil
}

func (m *MockAnswerCache) SaveToCache(ctx context.Context, id string, v []float32, a policyModel.Answer) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

// MockRetriever implements retriever.Retriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, query policyModel.Query, queryVector []float32) (policyModel.RetrievalResult, error)
}

func (m *MockRetriever) Retrieve(ctx context.Context, q policyModel.Query, v []float32) (policyModel.RetrievalResult, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, q, v)
	}
	return policyModel.RetrievalResult{Matches: []policyModel.ScoredChunk{
		{Chunk: policyModel.Chunk{Id: "c-1", DocId: "doc-1", Section: policyModel.SectionCoverage, Text: "default context"}, Score: 0.8, Granularity: policyModel.GranularityPassage},
	}}, nil
}

// MockGenerator implements generator.Generator
type MockGenerator struct {
	OnGenerate func(ctx context.Context, query policyModel.Query, retrieval policyModel.RetrievalResult) (policyModel.Answer, error)
}

func (m *MockGenerator) Generate(ctx context.Context, q policyModel.Query, r policyModel.RetrievalResult) (policyModel.Answer, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, r)
	}
	return policyModel.Answer{
		Text:         "mocked answer",
		Language:     policyModel.LangEnglish,
		Confidence:   0.8,
		Verification: policyModel.VerificationUnverified,
	}, nil
}

// MockVerifier implements verifier.Verifier
type MockVerifier struct {
	OnVerify func(ctx context.Context, answer policyModel.Answer) policyModel.Answer
}

func (m *MockVerifier) Verify(ctx context.Context, a policyModel.Answer) policyModel.Answer {
	if m.OnVerify != nil {
		return m.OnVerify(ctx, a)
	}
	return a
}

// MockIngestor implements ingest.Ingestor
type MockIngestor struct {
	OnIngestDocument func(ctx context.Context, doc policyModel.Document) error
	OnDeleteDocument func(ctx context.Context, docId string) error
	OnListDocuments  func(ctx context.Context) ([]policyModel.Document, error)
}

func (m *MockIngestor) IngestDocument(ctx context.Context, doc policyModel.Document) error {
	if m.OnIngestDocument != nil {
		return m.OnIngestDocument(ctx, doc)
	}
	return nil
}

func (m *MockIngestor) DeleteDocument(ctx context.Context, docId string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, docId)
	}
	return nil
}

func (m *MockIngestor) ListDocuments(ctx context.Context) ([]policyModel.Document, error) {
	if m.OnListDocuments != nil {
		return m.OnListDocuments(ctx)
	}
	return nil, nil
}

// MockAuditSink implements audit.Sink
type MockAuditSink struct {
	OnRecord func(ctx context.Context, record policyModel.AuditRecord) error
}

func (m *MockAuditSink) Record(ctx context.Context, record policyModel.AuditRecord) error {
	if m.OnRecord != nil {
		return m.OnRecord(ctx, record)
	}
	return nil
}
