package googleEmbedding

import (
	"context"
	"sync"
	"time"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/rag/embedding"
	"github.com/nitivista/policyqa/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Debug("Google Embedding model name: " + modelName)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) GetQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_QUERY"})
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err.Error())
		return nil, err
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.doCall(ctx, getContent(chunks))
	if err != nil || res == nil {
		if doRetry(err, log) {
			time.Sleep(5 * time.Second)
			log.Debug("Retrying after rate limit")
			res, err = c.doCall(ctx, getContent(chunks))
		}
		if err != nil {
			log.Error("Error getting embeddings from Google", "error", err)
			return nil, err
		}
	}

	var embeddingResults [][]float32
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}
