package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nitivista/policyqa/internal/api"
	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/job"
	"github.com/nitivista/policyqa/internal/metrics"
	"github.com/nitivista/policyqa/internal/rag"
	"github.com/nitivista/policyqa/internal/rag/language"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service    *job.Service
	ragService rag.Service
}

func InitJobHandler(jobService *job.Service, ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, ragService: ragService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
	if newJob.isNewConversation {
		logJH.Info("Create new conversation")
		handlerInstance.initNewConversation(newJob.conversationId, newJob.traceId)
	}
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// DeleteDocument is the one synchronous write path: removal is cheap and the
// caller needs to know it took effect before re-uploading.
func DeleteDocument(ctx context.Context, docId string) error {
	return handlerInstance.ragService.DeleteDocument(ctx, docId)
}

func ListDocuments(ctx context.Context) ([]policyModel.Document, error) {
	return handlerInstance.ragService.ListDocuments(ctx)
}

func ValidateQueryRequest(queryReq api.QueryRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug(" Validating query request ", "conversationId :", queryReq.ConversationId)
	if queryReq.Question == "" {
		return false
	}
	if queryReq.ConversationId == "" {
		return true
	}
	return handlerInstance.service.ConversationStore.ValidateConversationId(context.Background(), queryReq.ConversationId)
}

func ValidateIngestRequest(ingestReq api.IngestDocumentRequest) bool {
	if handlerInstance == nil {
		return false
	}
	if ingestReq.DocumentId == "" || len(ingestReq.Chunks) == 0 {
		return false
	}
	for _, c := range ingestReq.Chunks {
		if c.Text == "" {
			return false
		}
	}
	return true
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.IngestDocument = newJob.document

	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.ConversationId = newJob.conversationId
		_job.JobPayload.Question = newJob.question
		if newJob.queryLanguage != "" {
			_job.JobPayload.QueryLanguage = language.Normalize(newJob.queryLanguage)
		}
		if newJob.targetLanguage != "" {
			_job.JobPayload.TargetLanguage = language.Normalize(newJob.targetLanguage)
		}
		_job.CurrentStep = jobModel.UserQueryInit
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is started every N requests, and always for an ingest job:
	//ingestion batches embedding calls against an external system and can
	//take a while, so it should not hold up queued queries.
	//idle workers retire on their own, so the pool shrinks back afterwards.

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewConversation(conversationId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := h.service.ConversationStore.InitNewConversation(ctxC, conversationId)
	if err != nil {
		logJH.Error("Error initiating new conversation", "conversationId", conversationId, "error", err)
		return
	}
}
