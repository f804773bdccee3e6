package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/metrics"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans policyModel.Answer) jobModel.Job {
	job.JobPayload.Answer = &ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessQuery", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, query policyModel.Query) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetQueryEmbedding(ctx, query.Text)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (policyModel.Answer, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.cache.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, query policyModel.Query, emb []float32) (policyModel.RetrievalResult, error) {
	*job = logOutput(*job, jobModel.RetrievalCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, query, emb)
}

// executeGenerationStep retries a deadline miss once with the context halved;
// a smaller prompt is the documented remedy for a generation timeout.
func (s *service) executeGenerationStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, query policyModel.Query, retrieval policyModel.RetrievalResult) (policyModel.Answer, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	answer, err := s.generator.Generate(ctx, query, retrieval)

	var timeoutErr *policyModel.GenerationTimeoutError
	if errors.As(err, &timeoutErr) && len(retrieval.Matches) > 1 {
		log.Warn("generation timed out, retrying with smaller context", "deadline", timeoutErr.Deadline)
		retrieval.Matches = retrieval.Matches[:(len(retrieval.Matches)+1)/2]
		answer, err = s.generator.Generate(ctx, query, retrieval)
	}
	return answer, err
}

func (s *service) executeVerificationStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, answer policyModel.Answer) policyModel.Answer {
	*job = logOutput(*job, jobModel.VerificationCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("verification", time.Since(start)) }()

	return s.verifier.Verify(ctx, answer)
}
