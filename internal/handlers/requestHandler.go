package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/nitivista/policyqa/internal/adapter"
	"github.com/nitivista/policyqa/internal/adapter/utils"
	"github.com/nitivista/policyqa/internal/api"
	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

var logRH *logger_i.Logger

// carried between handler and job creation so the job channel push can live
// in jobHandler once it moves to its own package
type newJobData struct {
	id                string
	conversationId    string
	question          string
	queryLanguage     string
	targetLanguage    string
	isNewConversation bool
	traceId           string
	isDocumentIngest  bool
	document          *policyModel.Document
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// QueryHandler godoc
// @Summary      Ask a policy question
// @Description  Accepts a question, initializes a background answering job, and returns a job ID to track status.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest     true  "Question, optional language tags and conversation ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or conversation ID"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the query handler reader :", "error", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateQueryRequest(requestData) {
			logRH.Warn("Bad Query Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ConversationId, "Bad Request")
			return
		}

		processNewQueryJob(request, w, requestData)
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives pre-extracted document chunks as JSON and queues an ingestion job. Text extraction and OCR happen upstream.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestDocumentRequest  true  "Document ID, language and ordered chunks"
// @Success      202  {object}  api.InitJobResponse  "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse      "Bad Request - missing fields or malformed chunks"
// @Router       /documents [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		var requestData api.IngestDocumentRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the ingest handler reader :", "error", err)
			}
		}(r.Body)
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || !ValidateIngestRequest(requestData) {
			logRH.Warn("Bad Ingest Request: ", "error:", err, "documentId:", requestData.DocumentId)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.DocumentId, "Bad Request")
			return
		}

		processNewIngestJob(r, w, requestData)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Description  Returns the header of every ingested document: ID, language, summary and ingestion time.
// @Tags         Ingestion
// @Produce      json
// @Success      200  {object}  api.ListDocumentsResponse  "Ingested documents"
// @Failure      500  {object}  api.JobResponse            "Listing failed"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docs, err := ListDocuments(r.Context())
		if err != nil {
			logRH.Error("Failed to list documents", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToListDocumentsResponse(docs))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteDocumentHandler godoc
// @Summary      Delete an ingested document
// @Description  Removes a document, its chunks and its index entries. Synchronous: a 200 means it is gone.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DeleteDocumentResponse  "Document removed"
// @Failure      500  {object}  api.JobResponse             "Removal failed"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docId := utils.GetChiURLParam(r, "id")
		if docId == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document id is required")
			return
		}

		if err := DeleteDocument(r.Context(), docId); err != nil {
			logRH.Error("Failed to delete document", "docId", docId, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, docId, "Could not delete document")
			return
		}
		writeJsonResponse(w, http.StatusOK, api.DeleteDocumentResponse{DocumentId: docId, Status: "deleted"})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}
