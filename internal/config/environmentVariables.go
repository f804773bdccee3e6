package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//auth
	NoAuthBypass = false
	AuthToken    = ""

	//semantic answer cache
	AnswerCacheSimilarityCutoff = 0.97

	EmbeddingOutputDimensionality int32 = 1536
	ChunkCollectionName                 = "policy-chunks"
	DocSummaryCollectionName            = "policy-docs"
	AnswerCacheCollectionName           = "answer-cache"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	LLMProviderName      = "gemini" //or "openai"

	//keys come from the environment; these are the names looked up
	GoogleAPIKeyEnv = "GOOGLE_API_KEY"
	OpenAIAPIKeyEnv = "OPENAI_API_KEY"

	ModelTemperature float32 = 0.2
	SystemPrompt             = "You are an insurance policy assistant. Answer only from the provided policy context. " +
		"If the context does not contain the answer, say you do not know. Never invent coverage terms, amounts or waiting periods."

	//per-query pipeline deadlines
	QueryPipelineTimeout = 30 * time.Second
	JobExecutionTimeout  = 60 * time.Second

	//fact lookup - empty URL means verification runs degraded
	FactLookupURL = ""

	//http connection pooling
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DBs we can use
	RedisJobStore          = 0
	RedisConversationStore = 1
	RedisAuditStore        = 2
	RedisChunkStore        = 3

	RedisJobStoreTTL          = 24 * time.Hour
	RedisConversationStoreTTL = 24 * time.Hour

	// Retention of audit records is enforced by the compliance collaborator;
	// the TTL here only guarantees records cannot outlive the 30 day window.
	RedisAuditStoreTTL = 30 * 24 * time.Hour
)
