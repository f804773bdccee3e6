package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nitivista/policyqa/internal/config"
	jobmodel "github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/metrics"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	jobLogger := logger.With("traceId", job.TraceId)
	jobLogger.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if job.JobType == jobmodel.JobTypeIngest {
		job.CurrentStep = jobmodel.IngestProcessing
		job = _ragService.IngestDocument(ctx, job)

	} else {
		job.CurrentStep = jobmodel.RedisCall
		job = processQuery(job, ctx, jobLogger)
		if job.Status != jobmodel.JobStatusError {
			if err := _jobService.ConversationStore.TrySaveTurn(ctx, job.ConversationId, job.JobPayload); err != nil {
				jobLogger.Error("Failed to save conversation turn", "err", err)
			}
		}
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}
	saveJobState(ctx, job, job.Status)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func processQuery(job jobmodel.Job, ctx context.Context, jobLogger *logger_i.Logger) jobmodel.Job {
	messageHistory, err := _jobService.ConversationStore.GetHistory(ctx, job.ConversationId)
	if err != nil {
		jobLogger.Error("Failed to get conversation history", "err", err)
	}
	return _ragService.ProcessQuery(ctx, job, messageHistory)
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
