// @title           Policy QA API
// @version         1.0
// @description     This API answers insurance policy questions over ingested policy documents.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nitivista/policyqa/internal/audit"
	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/data/store"
	jobmodel "github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/handlers"
	"github.com/nitivista/policyqa/internal/job"
	"github.com/nitivista/policyqa/internal/rag"
	"github.com/nitivista/policyqa/internal/rag/chunkstore"
	"github.com/nitivista/policyqa/internal/rag/embedding/googleEmbedding"
	"github.com/nitivista/policyqa/internal/rag/generator"
	"github.com/nitivista/policyqa/internal/rag/ingest"
	"github.com/nitivista/policyqa/internal/rag/llm"
	"github.com/nitivista/policyqa/internal/rag/llm/gemini"
	"github.com/nitivista/policyqa/internal/rag/llm/openaiLLM"
	"github.com/nitivista/policyqa/internal/rag/retriever"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
	"github.com/nitivista/policyqa/internal/rag/vectorDB/memoryDB"
	"github.com/nitivista/policyqa/internal/rag/vectorDB/qdrantDB"
	"github.com/nitivista/policyqa/internal/rag/verifier"
	"github.com/nitivista/policyqa/internal/server"
	"github.com/nitivista/policyqa/internal/worker"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	pipelineConfig, err := config.LoadPipelineConfig()
	if err != nil {
		logger.Error("Invalid pipeline configuration", "error", err)
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	//nil checks run on the concrete pointers so a dead redis never hides
	//behind a non-nil interface
	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisConversationStore := store.GetRedisConversationStore(serviceContext)
	if redisJobStore == nil || redisConversationStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.ConversationStore = store.InitConversationStore()
	} else {
		serviceConfig.JobStore = redisJobStore
		serviceConfig.ConversationStore = redisConversationStore
	}
	service := job.InitJobService(serviceConfig)

	var chunkStore chunkstore.Store
	if redisChunkStore := chunkstore.GetRedisStore(serviceContext); redisChunkStore != nil {
		chunkStore = redisChunkStore
	} else {
		logger.Error("Redis chunk store is offline, falling back to in-memory store")
		chunkStore = chunkstore.InitInMemoryStore()
	}

	var vectorIndex vectorDB.VectorIndex
	var answerCache vectorDB.AnswerCache
	if qdrantClient := qdrantDB.GetQdrantClient(serviceContext); qdrantClient != nil {
		vectorIndex, answerCache = qdrantClient, qdrantClient
	} else {
		logger.Error("Qdrant is offline, falling back to in-memory index")
		memoryIndex := memoryDB.InitMemoryIndex(int(config.EmbeddingOutputDimensionality), config.AnswerCacheSimilarityCutoff)
		vectorIndex, answerCache = memoryIndex, memoryIndex
	}

	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, os.Getenv(config.GoogleAPIKeyEnv))

	var llmProvider llm.Provider
	switch config.LLMProviderName {
	case "openai":
		llmProvider = openaiLLM.GetOpenAIClient(config.OpenAIModelName, os.Getenv(config.OpenAIAPIKeyEnv))
	default:
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, os.Getenv(config.GoogleAPIKeyEnv))
	}

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	factLookup := verifier.GetHTTPLookup()
	if factLookup == nil {
		logger.Warn("No fact lookup endpoint configured, verification runs degraded")
		factLookup = verifier.UnavailableLookup()
	}

	var auditSink audit.Sink
	if redisSink := audit.GetRedisSink(serviceContext); redisSink != nil {
		auditSink = redisSink
	} else {
		logger.Error("Redis audit sink is offline, audit records will be dropped")
		auditSink = audit.NewNoopSink()
	}

	ragService := rag.NewService(
		embeddingService,
		answerCache,
		retriever.InitRetriever(vectorIndex, chunkStore, pipelineConfig),
		generator.InitGenerator(llmProvider, pipelineConfig),
		verifier.InitVerifier(factLookup, pipelineConfig),
		ingest.InitIngestor(embeddingService, vectorIndex, chunkStore),
		auditSink,
	)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
