package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/nitivista/policyqa/internal/rag/llm"
	"github.com/nitivista/policyqa/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		openaiClient = &llmClient{
			client:    openai.NewClient(option.WithAPIKey(apikey)),
			modelName: modelName,
		}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(float64(req.Temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("openai generation: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai generation: empty choice list")
	}
	return completion.Choices[0].Message.Content, nil
}
