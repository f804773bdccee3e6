package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/llm"
)

type mockProvider struct {
	generateFunc func(ctx context.Context, req llm.Request) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	return m.generateFunc(ctx, req)
}

func testGenConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MaxContextChars:   6000,
		Samples:           3,
		ConfidenceFloor:   0.5,
		RetrievalBlend:    0.5,
		AgreementBlend:    0.35,
		CertaintyBlend:    0.15,
		GenerationTimeout: 5 * time.Second,
	}
}

func testRetrieval(score float64) policyModel.RetrievalResult {
	return policyModel.RetrievalResult{Matches: []policyModel.ScoredChunk{
		{
			Chunk: policyModel.Chunk{
				Id: "c-1", DocId: "doc-1", Section: policyModel.SectionCoverage,
				Text: "Ambulance charges are covered up to 2000 rupees per hospitalization.",
			},
			Score:       score,
			Granularity: policyModel.GranularityPassage,
		},
	}}
}

func TestGenerateConsistentSamplesScoreHigh(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "Ambulance charges are covered up to 2000 rupees per hospitalization.", nil
		},
	}
	g := InitGenerator(provider, testGenConfig())

	answer, err := g.Generate(context.Background(), policyModel.Query{Text: "are ambulance charges covered"}, testRetrieval(0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// retrieval 0.9, agreement 1.0, certainty 1.0 -> 0.95
	if answer.Confidence < 0.9 {
		t.Errorf("expected high confidence, got %v", answer.Confidence)
	}
	if answer.Disclaimed {
		t.Error("high confidence answer must not carry a disclaimer")
	}
	if len(answer.Citations) != 1 || answer.Citations[0].ChunkId != "c-1" {
		t.Errorf("expected citation of c-1, got %v", answer.Citations)
	}
	if answer.Verification != policyModel.VerificationUnverified {
		t.Errorf("fresh answer must start unverified, got %v", answer.Verification)
	}
}

func TestGenerateDivergentSamplesScoreLower(t *testing.T) {
	consistent := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "Ambulance charges are covered.", nil
		},
	}
	divergentAnswers := []string{
		"Ambulance charges are covered.",
		"Room rent is limited to one percent of the sum insured.",
		"Maternity benefits apply after a waiting period.",
	}
	call := 0
	divergent := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			answer := divergentAnswers[call%len(divergentAnswers)]
			call++
			return answer, nil
		},
	}

	g1 := InitGenerator(consistent, testGenConfig())
	g2 := InitGenerator(divergent, testGenConfig())

	a1, err := g1.Generate(context.Background(), policyModel.Query{Text: "q"}, testRetrieval(0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := g2.Generate(context.Background(), policyModel.Query{Text: "q"}, testRetrieval(0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a2.Confidence >= a1.Confidence {
		t.Errorf("divergent samples must score below consistent ones: %v >= %v", a2.Confidence, a1.Confidence)
	}
}

func TestGenerateHedgingLowersConfidence(t *testing.T) {
	hedged := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "It is unclear, but ambulance charges might possibly be covered.", nil
		},
	}
	plain := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "Ambulance charges are covered.", nil
		},
	}

	hedgedAnswer, err := InitGenerator(hedged, testGenConfig()).Generate(context.Background(), policyModel.Query{Text: "q"}, testRetrieval(0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plainAnswer, err := InitGenerator(plain, testGenConfig()).Generate(context.Background(), policyModel.Query{Text: "q"}, testRetrieval(0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hedgedAnswer.Confidence >= plainAnswer.Confidence {
		t.Errorf("hedged answer must score below plain one: %v >= %v", hedgedAnswer.Confidence, plainAnswer.Confidence)
	}
}

func TestGenerateLowConfidenceGetsLocalizedDisclaimer(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "शायद यह कवर है।", nil
		},
	}
	g := InitGenerator(provider, testGenConfig())

	answer, err := g.Generate(context.Background(),
		policyModel.Query{Text: "प्रश्न", TargetLanguage: policyModel.LangHindi}, testRetrieval(0.05))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !answer.Disclaimed {
		t.Fatal("expected low-confidence answer to be disclaimed")
	}
	if answer.Language != policyModel.LangHindi {
		t.Errorf("expected Hindi answer, got %v", answer.Language)
	}
	if !strings.Contains(answer.Text, "कृपया ध्यान दें") {
		t.Errorf("expected Hindi disclaimer appended, got %q", answer.Text)
	}
}

func TestGenerateTimeoutReturnsTypedError(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	cfg := testGenConfig()
	cfg.GenerationTimeout = 10 * time.Millisecond
	g := InitGenerator(provider, cfg)

	_, err := g.Generate(context.Background(), policyModel.Query{Text: "q"}, testRetrieval(0.9))
	var timeoutErr *policyModel.GenerationTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected GenerationTimeoutError, got %v", err)
	}
	if timeoutErr.Deadline != cfg.GenerationTimeout {
		t.Errorf("expected deadline %v in error, got %v", cfg.GenerationTimeout, timeoutErr.Deadline)
	}
}

func TestGeneratePartialSamplesStillAnswer(t *testing.T) {
	call := 0
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			call++
			if call > 1 {
				return "", errors.New("rate limited")
			}
			return "Ambulance charges are covered.", nil
		},
	}
	g := InitGenerator(provider, testGenConfig())

	answer, err := g.Generate(context.Background(), policyModel.Query{Text: "q"}, testRetrieval(0.9))
	if err != nil {
		t.Fatalf("one good sample should be enough, got error: %v", err)
	}
	if answer.Text == "" {
		t.Error("expected a non-empty answer from the surviving sample")
	}
}

func TestGenerateContextBudgetLimitsCitations(t *testing.T) {
	retrieval := policyModel.RetrievalResult{Matches: []policyModel.ScoredChunk{
		{Chunk: policyModel.Chunk{Id: "c-1", DocId: "doc-1", Section: policyModel.SectionCoverage, Text: strings.Repeat("a", 200)}, Score: 0.9},
		{Chunk: policyModel.Chunk{Id: "c-2", DocId: "doc-1", Section: policyModel.SectionCoverage, Text: strings.Repeat("b", 200)}, Score: 0.8},
	}}
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return "answer", nil
		},
	}
	cfg := testGenConfig()
	cfg.MaxContextChars = 250
	g := InitGenerator(provider, cfg)

	answer, err := g.Generate(context.Background(), policyModel.Query{Text: "q"}, retrieval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].ChunkId != "c-1" {
		t.Errorf("budget should keep only the top passage, got %v", answer.Citations)
	}
}

func TestSuggestFollowUpsSkipCitedSections(t *testing.T) {
	citations := []policyModel.Citation{{ChunkId: "c-1", DocId: "d", Section: policyModel.SectionCoverage}}
	suggestions := suggestFollowUps(policyModel.LangEnglish, citations)
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	for _, s := range suggestions {
		if s == followUpTemplates[policyModel.LangEnglish][policyModel.SectionCoverage] {
			t.Errorf("cited section must not be suggested again: %q", s)
		}
	}
}

func TestMeanPairwiseAgreement(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    float64
	}{
		{"identical", []string{"a b c", "a b c"}, 1.0},
		{"disjoint", []string{"a b", "c d"}, 0.0},
		{"single", []string{"a b"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meanPairwiseAgreement(tt.samples); got != tt.want {
				t.Errorf("meanPairwiseAgreement(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}
