package adapter

import (
	"fmt"
	"time"

	"github.com/nitivista/policyqa/internal/api"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/language"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:         string(job.Status),
		AnswerResponse: ToAnswerResponse(job.JobPayload),
	}

	return api.JobResponse{
		Id:             job.Id,
		ConversationId: job.ConversationId,
		StartTime:      job.CreatedTime,
		EndTime:        job.EndTime,
		Error:          errorPtr,
		Result:         result,
	}
}

func ToAnswerResponse(payload jobModel.JobPayload) *api.AnswerResponse {
	if payload.Answer == nil {
		return nil
	}
	answer := payload.Answer

	citations := make([]api.CitationResponse, 0, len(answer.Citations))
	for _, c := range answer.Citations {
		citations = append(citations, api.CitationResponse{
			ChunkId:    c.ChunkId,
			DocumentId: c.DocId,
			Section:    string(c.Section),
		})
	}

	var claims []api.ClaimResponse
	for _, c := range answer.Claims {
		claims = append(claims, api.ClaimResponse{
			Text:         c.Text,
			Outcome:      string(c.Outcome),
			EvidenceRefs: c.EvidenceRefs,
		})
	}

	return &api.AnswerResponse{
		Question:           payload.Question,
		Answer:             answer.Text,
		Language:           string(answer.Language),
		Confidence:         answer.Confidence,
		Citations:          citations,
		VerificationStatus: string(answer.Verification),
		Claims:             claims,
		LookupDegraded:     answer.LookupDegraded,
		Disclaimed:         answer.Disclaimed,
		SuggestedQuestions: answer.FollowUps,
	}
}

// ToDocument maps an ingest request onto the domain model. Language tags are
// normalized here so nothing past the API boundary sees a raw BCP 47 string.
func ToDocument(request api.IngestDocumentRequest) policyModel.Document {
	chunks := make([]policyModel.Chunk, 0, len(request.Chunks))
	for _, c := range request.Chunks {
		var chunkLanguage policyModel.Language
		if c.Language != "" {
			chunkLanguage = language.Normalize(c.Language)
		}
		chunks = append(chunks, policyModel.Chunk{
			Id:          c.ChunkId,
			DocId:       request.DocumentId,
			Section:     policyModel.SectionLabel(c.Section),
			Text:        c.Text,
			StartOffset: c.StartOffset,
			EndOffset:   c.EndOffset,
			Language:    chunkLanguage,
		})
	}

	var docLanguage policyModel.Language
	if request.Language != "" {
		docLanguage = language.Normalize(request.Language)
	}
	return policyModel.Document{
		Id:       request.DocumentId,
		Language: docLanguage,
		Summary:  request.Summary,
		Chunks:   chunks,
	}
}

func ToListDocumentsResponse(docs []policyModel.Document) api.ListDocumentsResponse {
	out := make([]api.DocumentSummaryResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, api.DocumentSummaryResponse{
			DocumentId: d.Id,
			Language:   string(d.Language),
			Summary:    d.Summary,
			IngestedAt: d.IngestedAt,
		})
	}
	return api.ListDocumentsResponse{Documents: out}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:             id,
		ConversationId: "",
		StartTime:      time.Time{},
		EndTime:        time.Time{},
		Result: api.Result{
			Status:         string(api.JobStatusError),
			AnswerResponse: ToAnswerResponse(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
