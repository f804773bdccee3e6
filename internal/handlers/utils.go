package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nitivista/policyqa/internal/adapter"
	"github.com/nitivista/policyqa/internal/adapter/utils"
	"github.com/nitivista/policyqa/internal/api"
	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response:", "error", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	logRH.With("traceId:", ctx.Value(config.TRACE_ID_KEY).(string))
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func processNewQueryJob(request *http.Request, w http.ResponseWriter, requestData api.QueryRequest) {
	conversationId := requestData.ConversationId
	isNewConversation := false
	if conversationId == "" {
		conversationId = utils.GetNewUUID()
		logRH.Debug(" New conversation request : ", "conversationId:", conversationId)
		isNewConversation = true
	}

	newJob := newJobData{
		id:                utils.GetNewUUID(),
		conversationId:    conversationId,
		question:          requestData.Question,
		queryLanguage:     requestData.Language,
		targetLanguage:    requestData.TargetLanguage,
		isNewConversation: isNewConversation,
		traceId:           request.Context().Value(config.TRACE_ID_KEY).(string),
	}
	CreateNewJob(newJob)
	res := adapter.ToInitJobResponse(newJob.id)
	writeJsonResponse(w, http.StatusAccepted, res)
}

func processNewIngestJob(request *http.Request, w http.ResponseWriter, requestData api.IngestDocumentRequest) {
	document := adapter.ToDocument(requestData)

	newJob := newJobData{
		id:               utils.GetNewUUID(),
		traceId:          request.Context().Value(config.TRACE_ID_KEY).(string),
		isDocumentIngest: true,
		document:         &document,
	}
	CreateNewJob(newJob)
	res := adapter.ToInitJobResponse(newJob.id)
	writeJsonResponse(w, http.StatusAccepted, res)
}
