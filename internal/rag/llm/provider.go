package llm

import "context"

type Request struct {
	System      string
	Prompt      string
	Temperature float32
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}
