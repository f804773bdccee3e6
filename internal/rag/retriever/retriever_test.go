package retriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
)

type mockIndex struct {
	searchChunksFunc    func(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error)
	searchDocumentsFunc func(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error)
}

func (m *mockIndex) IndexChunk(ctx context.Context, chunk policyModel.Chunk) error { return nil }
func (m *mockIndex) IndexDocument(ctx context.Context, doc policyModel.Document, vector []float32) error {
	return nil
}
func (m *mockIndex) DeleteDocument(ctx context.Context, docId string) error { return nil }
func (m *mockIndex) SearchChunks(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
	return m.searchChunksFunc(ctx, vector, k, filter)
}
func (m *mockIndex) SearchDocuments(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
	return m.searchDocumentsFunc(ctx, vector, n)
}

type mockChunkStore struct {
	chunks map[string]policyModel.Chunk
	docs   map[string]policyModel.Document
}

func (m *mockChunkStore) PutDocument(ctx context.Context, doc policyModel.Document) error { return nil }
func (m *mockChunkStore) DeleteDocument(ctx context.Context, docId string) error          { return nil }
func (m *mockChunkStore) Chunks(ctx context.Context, docId string) ([]policyModel.Chunk, error) {
	return nil, nil
}
func (m *mockChunkStore) GetDocument(ctx context.Context, docId string) (policyModel.Document, bool) {
	doc, ok := m.docs[docId]
	return doc, ok
}
func (m *mockChunkStore) GetChunk(ctx context.Context, chunkId string) (policyModel.Chunk, bool) {
	chunk, ok := m.chunks[chunkId]
	return chunk, ok
}
func (m *mockChunkStore) Documents(ctx context.Context) ([]policyModel.Document, error) {
	return nil, nil
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		SemanticWeight:   0.7,
		KeywordWeight:    0.3,
		FuzzyMaxDistance: 2,
		CoarseTopN:       10,
		CoarseThreshold:  0.35,
		SectionTopK:      20,
		PassageTopK:      5,
		MinRelevance:     0.25,
	}
}

func TestRetrieveNoDocumentClearsCoarseThreshold(t *testing.T) {
	index := &mockIndex{
		searchDocumentsFunc: func(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
			return []vectorDB.DocHit{{DocId: "doc-1", Score: 0.2}}, nil
		},
	}
	r := InitRetriever(index, &mockChunkStore{}, testPipelineConfig())

	_, err := r.Retrieve(context.Background(), policyModel.Query{Text: "cataract surgery"}, []float32{1})
	if !errors.Is(err, policyModel.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestRetrieveKeywordBoostRanksExactTermFirst(t *testing.T) {
	// Both chunks score the same semantically; only one mentions the
	// waiting period the query asks about.
	store := &mockChunkStore{
		docs: map[string]policyModel.Document{
			"doc-1": {Id: "doc-1", IngestedAt: time.Unix(100, 0)},
		},
		chunks: map[string]policyModel.Chunk{
			"c-wait": {Id: "c-wait", DocId: "doc-1", Section: policyModel.SectionExclusion,
				Text: "Pre-existing diseases carry a waiting period of 48 months from policy inception."},
			"c-other": {Id: "c-other", DocId: "doc-1", Section: policyModel.SectionExclusion,
				Text: "Cosmetic treatment is permanently outside the scope of this policy."},
		},
	}
	index := &mockIndex{
		searchDocumentsFunc: func(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
			return []vectorDB.DocHit{{DocId: "doc-1", Score: 0.9}}, nil
		},
		searchChunksFunc: func(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
			return []vectorDB.ChunkHit{
				{ChunkId: "c-other", DocId: "doc-1", Score: 0.6},
				{ChunkId: "c-wait", DocId: "doc-1", Score: 0.6},
			}, nil
		},
	}
	r := InitRetriever(index, store, testPipelineConfig())

	result, err := r.Retrieve(context.Background(), policyModel.Query{Text: "waiting period for pre-existing diseases"}, []float32{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Matches))
	}
	if result.Matches[0].Chunk.Id != "c-wait" {
		t.Errorf("expected keyword-bearing chunk first, got %s", result.Matches[0].Chunk.Id)
	}
	if result.Matches[0].Score < result.Matches[1].Score {
		t.Errorf("scores must be non-increasing: %v then %v", result.Matches[0].Score, result.Matches[1].Score)
	}
}

func TestRetrieveTieBreakIsDeterministic(t *testing.T) {
	store := &mockChunkStore{
		docs: map[string]policyModel.Document{
			"doc-old": {Id: "doc-old", IngestedAt: time.Unix(100, 0)},
			"doc-new": {Id: "doc-new", IngestedAt: time.Unix(200, 0)},
		},
		chunks: map[string]policyModel.Chunk{
			"c-old":    {Id: "c-old", DocId: "doc-old", Text: "zq zq zq", StartOffset: 0},
			"c-new-20": {Id: "c-new-20", DocId: "doc-new", Text: "zq zq zq", StartOffset: 20},
			"c-new-5":  {Id: "c-new-5", DocId: "doc-new", Text: "zq zq zq", StartOffset: 5},
		},
	}
	index := &mockIndex{
		searchDocumentsFunc: func(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
			return []vectorDB.DocHit{{DocId: "doc-old", Score: 0.9}, {DocId: "doc-new", Score: 0.9}}, nil
		},
		searchChunksFunc: func(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
			return []vectorDB.ChunkHit{
				{ChunkId: "c-old", DocId: "doc-old", Score: 0.8},
				{ChunkId: "c-new-20", DocId: "doc-new", Score: 0.8},
				{ChunkId: "c-new-5", DocId: "doc-new", Score: 0.8},
			}, nil
		},
	}
	r := InitRetriever(index, store, testPipelineConfig())

	// No lexical overlap, so every chunk ties on the semantic score alone.
	for run := 0; run < 3; run++ {
		result, err := r.Retrieve(context.Background(), policyModel.Query{Text: "ambulance charges"}, []float32{1})
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}
		got := make([]string, 0, len(result.Matches))
		for _, m := range result.Matches {
			got = append(got, m.Chunk.Id)
		}
		want := []string{"c-new-5", "c-new-20", "c-old"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: order %v, want %v", run, got, want)
			}
		}
	}
}

func TestRetrieveDropsBelowRelevanceFloor(t *testing.T) {
	store := &mockChunkStore{
		docs: map[string]policyModel.Document{"doc-1": {Id: "doc-1"}},
		chunks: map[string]policyModel.Chunk{
			"c-weak": {Id: "c-weak", DocId: "doc-1", Text: "unrelated text"},
		},
	}
	index := &mockIndex{
		searchDocumentsFunc: func(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
			return []vectorDB.DocHit{{DocId: "doc-1", Score: 0.5}}, nil
		},
		searchChunksFunc: func(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
			return []vectorDB.ChunkHit{{ChunkId: "c-weak", DocId: "doc-1", Score: 0.1}}, nil
		},
	}
	r := InitRetriever(index, store, testPipelineConfig())

	_, err := r.Retrieve(context.Background(), policyModel.Query{Text: "room rent limit"}, []float32{1})
	if !errors.Is(err, policyModel.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch when all passages fall below the floor, got %v", err)
	}
}

func TestRetrieveSectionFilterFallsBackWhenEmpty(t *testing.T) {
	calls := make([]vectorDB.ChunkFilter, 0, 2)
	store := &mockChunkStore{
		docs: map[string]policyModel.Document{"doc-1": {Id: "doc-1"}},
		chunks: map[string]policyModel.Chunk{
			"c-1": {Id: "c-1", DocId: "doc-1", Text: "claim settlement within 30 days"},
		},
	}
	index := &mockIndex{
		searchDocumentsFunc: func(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
			return []vectorDB.DocHit{{DocId: "doc-1", Score: 0.9}}, nil
		},
		searchChunksFunc: func(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
			calls = append(calls, filter)
			if len(filter.Sections) > 0 {
				return nil, nil
			}
			return []vectorDB.ChunkHit{{ChunkId: "c-1", DocId: "doc-1", Score: 0.9}}, nil
		},
	}
	r := InitRetriever(index, store, testPipelineConfig())

	result, err := r.Retrieve(context.Background(), policyModel.Query{Text: "how do I file a claim"}, []float32{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match after fallback, got %d", len(result.Matches))
	}
	if len(calls) != 2 || len(calls[0].Sections) == 0 || len(calls[1].Sections) != 0 {
		t.Errorf("expected a section-filtered search followed by an unrestricted one, got %v", calls)
	}
}

func TestFuzzyStrategyToleratesTypos(t *testing.T) {
	s := fuzzyKeywordStrategy{maxDistance: 2}
	chunk := policyModel.Chunk{Text: "The premium is payable annually."}

	tests := []struct {
		name   string
		tokens []string
		want   float64
	}{
		{"typo within budget", []string{"premum"}, 1},
		{"inflected form", []string{"premiums"}, 1},
		{"beyond budget", []string{"prescription"}, 0},
		{"short token exact only", []string{"pay"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.tokens, chunk); got != tt.want {
				t.Errorf("Score(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"premium", "premium", 0},
		{"premium", "premum", 1},
		{"claim", "claims", 1},
		{"", "abc", 3},
		{"कवर", "कवच", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestInferSections(t *testing.T) {
	tests := []struct {
		query string
		want  policyModel.SectionLabel
	}{
		{"is cataract excluded from coverage", policyModel.SectionExclusion},
		{"how do I raise a claim", policyModel.SectionClaims},
		{"when is my premium due", policyModel.SectionPremium},
		{"what does the policy cover", policyModel.SectionCoverage},
		{"क्लेम कैसे करें", policyModel.SectionClaims},
	}
	for _, tt := range tests {
		sections := inferSections(tt.query)
		if len(sections) == 0 || sections[0] != tt.want {
			t.Errorf("inferSections(%q) = %v, want first %v", tt.query, sections, tt.want)
		}
	}

	if got := inferSections("tell me about this document"); len(got) != 0 {
		t.Errorf("expected no inferred sections, got %v", got)
	}
}
