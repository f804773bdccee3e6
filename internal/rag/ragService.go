package rag

import (
	"context"
	"errors"
	"time"

	"github.com/nitivista/policyqa/internal/adapter/utils"
	"github.com/nitivista/policyqa/internal/audit"
	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/metrics"
	"github.com/nitivista/policyqa/internal/rag/embedding"
	"github.com/nitivista/policyqa/internal/rag/generator"
	"github.com/nitivista/policyqa/internal/rag/ingest"
	"github.com/nitivista/policyqa/internal/rag/language"
	"github.com/nitivista/policyqa/internal/rag/retriever"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
	"github.com/nitivista/policyqa/internal/rag/verifier"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// Service is the only contract the worker sees. It hides the embedder, the
// index, the retriever and the verifier behind one door so the worker stays
// decoupled from the pipeline internals.
type Service interface {
	ProcessQuery(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	DeleteDocument(ctx context.Context, docId string) error
	ListDocuments(ctx context.Context) ([]policyModel.Document, error)
}

type service struct {
	embedder  embedding.Embedder
	cache     vectorDB.AnswerCache
	retriever retriever.Retriever
	generator generator.Generator
	verifier  verifier.Verifier
	ingestor  ingest.Ingestor
	auditor   audit.Sink
	logger    *logger_i.Logger
}

// NewService constructor. The auditor may be the noop sink; everything else
// is required.
func NewService(
	embedder embedding.Embedder,
	cache vectorDB.AnswerCache,
	ret retriever.Retriever,
	gen generator.Generator,
	ver verifier.Verifier,
	ing ingest.Ingestor,
	auditor audit.Sink,
) Service {
	return &service{
		embedder:  embedder,
		cache:     cache,
		retriever: ret,
		generator: gen,
		verifier:  ver,
		ingestor:  ing,
		auditor:   auditor,
		logger:    logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessQuery(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QueryPipelineTimeout)
	defer cancel()

	query := buildQuery(jobt, messageHistory)

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt, query)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Semantic answer cache
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, queryVector)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Three-tier retrieval
	retrieval, err := s.executeRetrievalStep(processContext, inMethodLogger, &jobt, query, queryVector)
	if err != nil {
		if errors.Is(err, policyModel.ErrNoMatch) {
			return returnOutput(jobt, noMatchAnswer(query))
		}
		return s.jobError(jobt, err, "RETRIEVAL_FAILURE", true)
	}

	// LLM generation
	answer, err := s.executeGenerationStep(processContext, inMethodLogger, &jobt, query, retrieval)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	// Fact verification - downgrades, never fails
	answer = s.executeVerificationStep(processContext, inMethodLogger, &jobt, answer)
	metrics.CaptureAnswerConfidence(answer.Confidence)

	// Background cache save. Contradicted and disclaimed answers are not
	// worth replaying to the next caller. The save outlives the job context,
	// which the worker cancels as soon as the answer is returned.
	if answer.Verification != policyModel.VerificationContradicted && !answer.Disclaimed {
		saveContext := context.WithoutCancel(ctx)
		go func() {
			if err := s.cache.SaveToCache(saveContext, utils.GetNewUUID(), queryVector, answer); err != nil {
				s.logger.Error("Failed to save to cache", "error", err)
			}
		}()
	}

	s.emitAuditRecord(ctx, jobt, query, answer)

	return returnOutput(jobt, answer)
}

func (s *service) IngestDocument(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureJobMetrics("document_ingestion", time.Since(start)) }()

	jobt.CurrentStep = jobModel.IngestProcessing
	if jobt.JobPayload.IngestDocument == nil {
		return s.jobError(jobt, errors.New("ingest job carries no document"), "INGESTION_FAILURE", false)
	}

	ingestContext, cancel := context.WithTimeout(ctx, config.JobExecutionTimeout)
	defer cancel()

	if err := s.ingestor.IngestDocument(ingestContext, *jobt.JobPayload.IngestDocument); err != nil {
		return s.jobError(jobt, err, "INGESTION_FAILURE", true)
	}

	jobt.CurrentStep = jobModel.Complete
	return jobt
}

func (s *service) DeleteDocument(ctx context.Context, docId string) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_deletion", time.Since(start)) }()
	return s.ingestor.DeleteDocument(ctx, docId)
}

func (s *service) ListDocuments(ctx context.Context) ([]policyModel.Document, error) {
	return s.ingestor.ListDocuments(ctx)
}

func (s *service) emitAuditRecord(ctx context.Context, jobt jobModel.Job, query policyModel.Query, answer policyModel.Answer) {
	record := policyModel.AuditRecord{
		QueryId:      jobt.Id,
		Timestamp:    time.Now().UTC(),
		Question:     query.Text,
		AnswerText:   answer.Text,
		Confidence:   answer.Confidence,
		Verification: answer.Verification,
	}
	// Audit writes outlive the job context for the same reason as cache saves.
	auditContext := context.WithoutCancel(ctx)
	go func() {
		if err := s.auditor.Record(auditContext, record); err != nil {
			s.logger.Error("Failed to write audit record", "jobId", jobt.Id, "error", err)
		}
	}()
}

func buildQuery(jobt jobModel.Job, messageHistory []string) policyModel.Query {
	queryLanguage := jobt.JobPayload.QueryLanguage
	if queryLanguage == "" {
		queryLanguage = language.Detect(jobt.JobPayload.Question)
	}
	targetLanguage := jobt.JobPayload.TargetLanguage
	if targetLanguage == "" {
		targetLanguage = queryLanguage
	}
	return policyModel.Query{
		Text:           jobt.JobPayload.Question,
		Language:       queryLanguage,
		TargetLanguage: targetLanguage,
		ConversationId: jobt.ConversationId,
		History:        messageHistory,
	}
}

func noMatchAnswer(query policyModel.Query) policyModel.Answer {
	return policyModel.Answer{
		Text:         language.NoMatchMessage(query.TargetLanguage),
		Language:     query.TargetLanguage,
		Confidence:   0,
		Verification: policyModel.VerificationUnverified,
	}
}
