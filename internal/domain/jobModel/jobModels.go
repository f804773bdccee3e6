package jobModel

import (
	"context"
	"time"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit    InternalStatus = "Init"
	CacheCall        InternalStatus = "CacheCall"
	RetrievalCall    InternalStatus = "Retrieval"
	LLMCall          InternalStatus = "LLM"
	VerificationCall InternalStatus = "Verification"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	RedisCall        InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id             string         `json:"id"`
	ConversationId string         `json:"conversation_id,omitempty"`
	TraceId        string         `json:"trace_id"`
	JobType        JobType        `json:"job_type"`
	JobPayload     JobPayload     `json:"job_payload"`
	Error          JobError       `json:"error,omitempty"`
	CreatedTime    time.Time      `json:"created_time"`
	EndTime        time.Time      `json:"end_time,omitempty"`
	Status         JobStatus      `json:"status"`
	CurrentStep    InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Question       string               `json:"question,omitempty"`
	QueryLanguage  policyModel.Language `json:"query_language,omitempty"`
	TargetLanguage policyModel.Language `json:"target_language,omitempty"`
	Answer         *policyModel.Answer  `json:"answer,omitempty"`

	IngestDocument *policyModel.Document `json:"ingest_document,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// ConversationStore keeps the prior turns a follow-up question is allowed to
// lean on. Turns are stored oldest first and trimmed on read.
type ConversationStore interface {
	ValidateConversationId(ctx context.Context, id string) bool
	TrySaveTurn(ctx context.Context, id string, payload JobPayload) error
	InitNewConversation(ctx context.Context, id string) error
	GetHistory(ctx context.Context, conversationId string) ([]string, error)
}
