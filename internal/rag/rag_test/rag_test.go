package rag_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag"
)

type mockSet struct {
	embedder  *MockEmbedder
	cache     *MockAnswerCache
	retriever *MockRetriever
	generator *MockGenerator
	verifier  *MockVerifier
	ingestor  *MockIngestor
	audit     *MockAuditSink
}

func newMockSet() *mockSet {
	return &mockSet{
		embedder:  &MockEmbedder{},
		cache:     &MockAnswerCache{},
		retriever: &MockRetriever{},
		generator: &MockGenerator{},
		verifier:  &MockVerifier{},
		ingestor:  &MockIngestor{},
		audit:     &MockAuditSink{},
	}
}

func (m *mockSet) service() rag.Service {
	return rag.NewService(m.embedder, m.cache, m.retriever, m.generator, m.verifier, m.ingestor, m.audit)
}

func testJob() jobModel.Job {
	return jobModel.Job{
		Id:      "test-job",
		TraceId: "test-trace",
		JobType: jobModel.JobTypeQuery,
		JobPayload: jobModel.JobPayload{
			Question: "Is cataract surgery covered?",
		},
	}
}

func testContext() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestProcessQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(m *mockSet)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		wantRetry      bool
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(m *mockSet) {
				m.generator.OnGenerate = func(ctx context.Context, q policyModel.Query, r policyModel.RetrievalResult) (policyModel.Answer, error) {
					return policyModel.Answer{Text: "final answer", Language: policyModel.LangEnglish, Confidence: 0.8}, nil
				}
				m.verifier.OnVerify = func(ctx context.Context, a policyModel.Answer) policyModel.Answer {
					a.Verification = policyModel.VerificationVerified
					return a
				}
			},
			expectedStep:   jobModel.Complete,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(m *mockSet) {
				m.cache.OnGetCachedAnswer = func(ctx context.Context, v []float32) (policyModel.Answer, bool, error) {
					return policyModel.Answer{Text: "cached answer", Confidence: 0.9}, true, nil
				}
				m.retriever.OnRetrieve = func(ctx context.Context, q policyModel.Query, v []float32) (policyModel.RetrievalResult, error) {
					t.Error("retriever must not run on a cache hit")
					return policyModel.RetrievalResult{}, nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedAnswer: "cached answer",
		},
		{
			name: "NoMatch_Is_Not_An_Error",
			setupMocks: func(m *mockSet) {
				m.retriever.OnRetrieve = func(ctx context.Context, q policyModel.Query, v []float32) (policyModel.RetrievalResult, error) {
					return policyModel.RetrievalResult{}, policyModel.ErrNoMatch
				}
			},
			expectedStep: jobModel.Complete,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(m *mockSet) {
				m.embedder.OnGetQueryEmbedding = func(ctx context.Context, q string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			wantRetry:      true,
		},
		{
			name: "Failure_Retrieval",
			setupMocks: func(m *mockSet) {
				m.retriever.OnRetrieve = func(ctx context.Context, q policyModel.Query, v []float32) (policyModel.RetrievalResult, error) {
					return policyModel.RetrievalResult{}, errors.New("index timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			wantRetry:      true,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(m *mockSet) {
				m.generator.OnGenerate = func(ctx context.Context, q policyModel.Query, r policyModel.RetrievalResult) (policyModel.Answer, error) {
					return policyModel.Answer{}, errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			wantRetry:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockSet()
			tt.setupMocks(m)

			result := m.service().ProcessQuery(testContext(), testJob(), []string{})

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if tt.expectedAnswer != "" {
				if result.JobPayload.Answer == nil {
					t.Fatal("expected an answer on the payload")
				}
				if result.JobPayload.Answer.Text != tt.expectedAnswer {
					t.Errorf("Answer got %q, want %q", result.JobPayload.Answer.Text, tt.expectedAnswer)
				}
			}
			if tt.expectedStatus == jobModel.JobStatusError {
				if result.Error.Code != http.StatusInternalServerError {
					t.Errorf("Error code got %d, want %d", result.Error.Code, http.StatusInternalServerError)
				}
				if result.Error.Retry != tt.wantRetry {
					t.Errorf("Retry got %v, want %v", result.Error.Retry, tt.wantRetry)
				}
			}
		})
	}
}

func TestProcessQuery_NoMatchAnswer(t *testing.T) {
	m := newMockSet()
	m.retriever.OnRetrieve = func(ctx context.Context, q policyModel.Query, v []float32) (policyModel.RetrievalResult, error) {
		return policyModel.RetrievalResult{}, policyModel.ErrNoMatch
	}
	m.generator.OnGenerate = func(ctx context.Context, q policyModel.Query, r policyModel.RetrievalResult) (policyModel.Answer, error) {
		t.Error("generator must not run when retrieval found nothing")
		return policyModel.Answer{}, nil
	}

	result := m.service().ProcessQuery(testContext(), testJob(), []string{})

	if result.Status == jobModel.JobStatusError {
		t.Fatal("no-match is an answer, not a job failure")
	}
	answer := result.JobPayload.Answer
	if answer == nil {
		t.Fatal("expected a no-match answer on the payload")
	}
	if answer.Confidence != 0 {
		t.Errorf("no-match confidence got %f, want 0", answer.Confidence)
	}
	if answer.Verification != policyModel.VerificationUnverified {
		t.Errorf("no-match verification got %s, want %s", answer.Verification, policyModel.VerificationUnverified)
	}
	if answer.Text == "" {
		t.Error("no-match answer must carry a user-facing message")
	}
}

func TestProcessQuery_GenerationTimeoutRetriesWithSmallerContext(t *testing.T) {
	m := newMockSet()

	matches := make([]policyModel.ScoredChunk, 4)
	for i := range matches {
		matches[i] = policyModel.ScoredChunk{
			Chunk: policyModel.Chunk{Id: "c", DocId: "doc-1", Text: "covered"},
			Score: 0.8,
		}
	}
	m.retriever.OnRetrieve = func(ctx context.Context, q policyModel.Query, v []float32) (policyModel.RetrievalResult, error) {
		return policyModel.RetrievalResult{Matches: matches}, nil
	}

	var calls int32
	var retrySize int
	m.generator.OnGenerate = func(ctx context.Context, q policyModel.Query, r policyModel.RetrievalResult) (policyModel.Answer, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return policyModel.Answer{}, &policyModel.GenerationTimeoutError{Deadline: 20 * time.Second}
		}
		retrySize = len(r.Matches)
		return policyModel.Answer{Text: "retry answer", Confidence: 0.7}, nil
	}

	result := m.service().ProcessQuery(testContext(), testJob(), []string{})

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("generator calls got %d, want 2", got)
	}
	if retrySize != 2 {
		t.Errorf("retry context size got %d, want 2", retrySize)
	}
	if result.Status == jobModel.JobStatusError {
		t.Fatal("job failed despite successful retry")
	}
	if result.JobPayload.Answer == nil || result.JobPayload.Answer.Text != "retry answer" {
		t.Error("expected the retry answer on the payload")
	}
}

func TestProcessQuery_ContradictedAnswerIsNotCached(t *testing.T) {
	m := newMockSet()
	m.verifier.OnVerify = func(ctx context.Context, a policyModel.Answer) policyModel.Answer {
		a.Verification = policyModel.VerificationContradicted
		a.Confidence = 0.3
		return a
	}

	var saved int32
	m.cache.OnSaveToCache = func(ctx context.Context, id string, v []float32, a policyModel.Answer) error {
		atomic.AddInt32(&saved, 1)
		return nil
	}

	result := m.service().ProcessQuery(testContext(), testJob(), []string{})

	if result.Status == jobModel.JobStatusError {
		t.Fatal("contradicted answer should still complete")
	}
	// contradicted answers never spawn the cache writer
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&saved) != 0 {
		t.Error("contradicted answer must not be written to the cache")
	}
}

func TestProcessQuery_EmitsAuditRecord(t *testing.T) {
	m := newMockSet()
	recorded := make(chan policyModel.AuditRecord, 1)
	m.audit.OnRecord = func(ctx context.Context, record policyModel.AuditRecord) error {
		recorded <- record
		return nil
	}

	result := m.service().ProcessQuery(testContext(), testJob(), []string{})
	if result.Status == jobModel.JobStatusError {
		t.Fatal("query failed")
	}

	select {
	case record := <-recorded:
		if record.QueryId != "test-job" {
			t.Errorf("audit query id got %q, want %q", record.QueryId, "test-job")
		}
		if record.Question != "Is cataract surgery covered?" {
			t.Errorf("audit question got %q", record.Question)
		}
		if record.Timestamp.IsZero() {
			t.Error("audit record has no timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("audit record was never emitted")
	}
}

func TestProcessQuery_BackgroundWritesSurviveJobCancellation(t *testing.T) {
	m := newMockSet()
	cacheCtx := make(chan context.Context, 1)
	auditCtx := make(chan context.Context, 1)
	m.cache.OnSaveToCache = func(ctx context.Context, id string, v []float32, a policyModel.Answer) error {
		cacheCtx <- ctx
		return nil
	}
	m.audit.OnRecord = func(ctx context.Context, record policyModel.AuditRecord) error {
		auditCtx <- ctx
		return nil
	}

	// the worker cancels the job context as soon as the answer is returned
	jobContext, cancel := context.WithCancel(testContext())
	result := m.service().ProcessQuery(jobContext, testJob(), []string{})
	cancel()

	if result.Status == jobModel.JobStatusError {
		t.Fatal("query failed")
	}

	for name, ch := range map[string]chan context.Context{"cache save": cacheCtx, "audit write": auditCtx} {
		select {
		case ctx := <-ch:
			if ctx.Err() != nil {
				t.Errorf("%s context died with the job: %v", name, ctx.Err())
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s never happened", name)
		}
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	doc := policyModel.Document{
		Id:       "doc-1",
		Language: policyModel.LangEnglish,
		Chunks: []policyModel.Chunk{
			{Id: "c-1", DocId: "doc-1", Text: "Hospitalization expenses are covered.", StartOffset: 0, EndOffset: 37},
		},
	}

	tests := []struct {
		name           string
		document       *policyModel.Document
		setupMocks     func(m *mockSet)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		wantRetry      bool
	}{
		{
			name:         "Ingestion_Success",
			document:     &doc,
			setupMocks:   func(m *mockSet) {},
			expectedStep: jobModel.Complete,
		},
		{
			name:           "Missing_Document_Is_Not_Retryable",
			document:       nil,
			setupMocks:     func(m *mockSet) {},
			expectedStatus: jobModel.JobStatusError,
			wantRetry:      false,
		},
		{
			name:     "Failure_Ingestor",
			document: &doc,
			setupMocks: func(m *mockSet) {
				m.ingestor.OnIngestDocument = func(ctx context.Context, d policyModel.Document) error {
					return errors.New("embedding batch failed")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			wantRetry:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockSet()
			tt.setupMocks(m)

			job := jobModel.Job{
				Id:      "ingest-job",
				TraceId: "test-trace",
				JobType: jobModel.JobTypeIngest,
				JobPayload: jobModel.JobPayload{
					IngestDocument: tt.document,
				},
			}

			result := m.service().IngestDocument(testContext(), job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if tt.expectedStatus == jobModel.JobStatusError && result.Error.Retry != tt.wantRetry {
				t.Errorf("Retry got %v, want %v", result.Error.Retry, tt.wantRetry)
			}
		})
	}
}

func TestDeleteDocument_Delegates(t *testing.T) {
	m := newMockSet()
	var deletedId string
	m.ingestor.OnDeleteDocument = func(ctx context.Context, docId string) error {
		deletedId = docId
		return nil
	}

	if err := m.service().DeleteDocument(context.Background(), "doc-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedId != "doc-9" {
		t.Errorf("deleted id got %q, want %q", deletedId, "doc-9")
	}
}
