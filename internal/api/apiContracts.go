package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id             string            `json:"id" example:"job_cz109"`
	ConversationId string            `json:"conversation_id,omitempty" example:"conv_550"`
	Result         Result            `json:"result"`
	Error          *JobOutgoingError `json:"error,omitempty"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type CitationResponse struct {
	ChunkId    string `json:"chunk_id"`
	DocumentId string `json:"document_id"`
	Section    string `json:"section"`
}

type ClaimResponse struct {
	Text         string   `json:"text"`
	Outcome      string   `json:"outcome"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

type AnswerResponse struct {
	Question           string             `json:"question"`
	Answer             string             `json:"answer"`
	Language           string             `json:"language"`
	Confidence         float64            `json:"confidence"`
	Citations          []CitationResponse `json:"citations"`
	VerificationStatus string             `json:"verification_status"`
	Claims             []ClaimResponse    `json:"claims,omitempty"`
	LookupDegraded     bool               `json:"lookup_degraded,omitempty"`
	Disclaimed         bool               `json:"disclaimed,omitempty"`
	SuggestedQuestions []string           `json:"suggested_questions,omitempty"`
}

type Result struct {
	Status         string          `json:"status"`
	AnswerResponse *AnswerResponse `json:"answer_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DeleteDocumentResponse struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
}

type DocumentSummaryResponse struct {
	DocumentId string    `json:"document_id"`
	Language   string    `json:"language"`
	Summary    string    `json:"summary,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummaryResponse `json:"documents"`
}

// requests---------------------

type QueryRequest struct {
	Question       string `json:"question" validate:"required"`
	Language       string `json:"language,omitempty" example:"hi"`
	TargetLanguage string `json:"target_language,omitempty" example:"en"`
	ConversationId string `json:"conversation_id,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type ChunkUpload struct {
	ChunkId     string `json:"chunk_id,omitempty"`
	Section     string `json:"section,omitempty" example:"exclusions"`
	Text        string `json:"text" validate:"required"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Language    string `json:"language,omitempty" example:"en"`
}

type IngestDocumentRequest struct {
	DocumentId string        `json:"document_id" validate:"required"`
	Language   string        `json:"language,omitempty" example:"en"`
	Summary    string        `json:"summary,omitempty"`
	Chunks     []ChunkUpload `json:"chunks" validate:"required"`
}
