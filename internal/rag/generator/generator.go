package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/language"
	"github.com/nitivista/policyqa/internal/rag/llm"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// Generator turns a ranked context into a cited, confidence-scored answer.
// Confidence is a blend of retrieval strength, agreement across independent
// samples and the absence of hedging in the chosen sample.
type Generator interface {
	Generate(ctx context.Context, query policyModel.Query, retrieval policyModel.RetrievalResult) (policyModel.Answer, error)
}

type generator struct {
	provider llm.Provider
	cfg      config.PipelineConfig
	logger   *logger_i.Logger
}

func InitGenerator(provider llm.Provider, cfg config.PipelineConfig) Generator {
	return &generator{
		provider: provider,
		cfg:      cfg,
		logger:   logger_i.NewLogger("generator"),
	}
}

func (g *generator) Generate(ctx context.Context, query policyModel.Query, retrieval policyModel.RetrievalResult) (policyModel.Answer, error) {
	target := targetLanguage(query)
	contextBlock, citations := g.buildContext(retrieval)
	prompt := g.buildPrompt(query, target, contextBlock)

	samples, err := g.sample(ctx, prompt)
	if err != nil {
		return policyModel.Answer{}, err
	}

	chosen := pickConsensusSample(samples)
	agreement := meanPairwiseAgreement(samples)
	certainty := g.certainty(chosen, target)

	blendSum := g.cfg.RetrievalBlend + g.cfg.AgreementBlend + g.cfg.CertaintyBlend
	confidence := (g.cfg.RetrievalBlend*retrieval.TopScore() +
		g.cfg.AgreementBlend*agreement +
		g.cfg.CertaintyBlend*certainty) / blendSum
	confidence = clamp01(confidence)

	answer := policyModel.Answer{
		Text:         chosen,
		Language:     target,
		Confidence:   confidence,
		Citations:    citations,
		Verification: policyModel.VerificationUnverified,
		FollowUps:    suggestFollowUps(target, citations),
	}
	if confidence < g.cfg.ConfidenceFloor {
		answer.Text = chosen + "\n\n" + language.Disclaimer(target)
		answer.Disclaimed = true
	}
	return answer, nil
}

// sample runs the configured number of generations against the same prompt
// under one shared deadline. A partial sample set is still usable; only a
// deadline with nothing produced at all is a timeout.
func (g *generator) sample(ctx context.Context, prompt string) ([]string, error) {
	genCtx, cancel := context.WithTimeout(ctx, g.cfg.GenerationTimeout)
	defer cancel()

	samples := make([]string, 0, g.cfg.Samples)
	var lastErr error
	for i := 0; i < g.cfg.Samples; i++ {
		if genCtx.Err() != nil {
			break
		}
		text, err := g.provider.Generate(genCtx, llm.Request{
			System:      config.SystemPrompt,
			Prompt:      prompt,
			Temperature: config.ModelTemperature,
		})
		if err != nil {
			lastErr = err
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			g.logger.Warn("generation sample failed", "sample", i, "error", err)
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			samples = append(samples, trimmed)
		}
	}

	if len(samples) == 0 {
		if genCtx.Err() != nil {
			return nil, &policyModel.GenerationTimeoutError{Deadline: g.cfg.GenerationTimeout}
		}
		return nil, fmt.Errorf("llm generation failed: %w", lastErr)
	}
	return samples, nil
}

// buildContext concatenates passages in rank order until the character budget
// runs out. The first passage is always included so a single oversized chunk
// cannot starve the prompt.
func (g *generator) buildContext(retrieval policyModel.RetrievalResult) (string, []policyModel.Citation) {
	var sb strings.Builder
	citations := make([]policyModel.Citation, 0, len(retrieval.Matches))

	for i, match := range retrieval.Matches {
		passage := fmt.Sprintf("[%d] (document %s, %s) %s\n", i+1, match.Chunk.DocId, match.Chunk.Section, match.Chunk.Text)
		if i > 0 && sb.Len()+len(passage) > g.cfg.MaxContextChars {
			break
		}
		sb.WriteString(passage)
		citations = append(citations, policyModel.Citation{
			ChunkId: match.Chunk.Id,
			DocId:   match.Chunk.DocId,
			Section: match.Chunk.Section,
		})
	}
	return sb.String(), citations
}

func (g *generator) buildPrompt(query policyModel.Query, target policyModel.Language, contextBlock string) string {
	var sb strings.Builder
	sb.WriteString("Policy context:\n")
	sb.WriteString(contextBlock)

	if len(query.History) > 0 {
		sb.WriteString("\nEarlier turns in this conversation:\n")
		for _, turn := range query.History {
			sb.WriteString(turn)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(query.Text)
	sb.WriteString("\n\nAnswer in ")
	sb.WriteString(language.Name(target))
	sb.WriteString(". Translate the meaning of the cited policy terms; do not transliterate them word by word.")
	return sb.String()
}

// pickConsensusSample returns the sample with the highest total lexical
// similarity to the others, the one closest to what the model "usually" says.
func pickConsensusSample(samples []string) string {
	if len(samples) == 1 {
		return samples[0]
	}
	tokenSets := make([]map[string]struct{}, len(samples))
	for i, s := range samples {
		tokenSets[i] = tokens(s)
	}

	best := 0
	bestScore := -1.0
	for i := range samples {
		total := 0.0
		for j := range samples {
			if i != j {
				total += jaccard(tokenSets[i], tokenSets[j])
			}
		}
		if total > bestScore {
			best = i
			bestScore = total
		}
	}
	return samples[best]
}

func meanPairwiseAgreement(samples []string) float64 {
	if len(samples) < 2 {
		return 1.0
	}
	tokenSets := make([]map[string]struct{}, len(samples))
	for i, s := range samples {
		tokenSets[i] = tokens(s)
	}
	sum := 0.0
	pairs := 0
	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			sum += jaccard(tokenSets[i], tokenSets[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// certainty penalizes hedging wording. English markers are always checked
// because models hedge in English even when answering in Hindi or Marathi.
func (g *generator) certainty(text string, target policyModel.Language) float64 {
	lowered := strings.ToLower(text)
	markers := language.HedgeMarkers(target)
	if target != policyModel.LangEnglish {
		markers = append(markers, language.HedgeMarkers(policyModel.LangEnglish)...)
	}

	score := 1.0
	for _, marker := range markers {
		if strings.Contains(lowered, marker) {
			score -= 0.25
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func targetLanguage(query policyModel.Query) policyModel.Language {
	if query.TargetLanguage != "" {
		return query.TargetLanguage
	}
	if query.Language != "" {
		return query.Language
	}
	return policyModel.LangEnglish
}

func tokens(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sortedSections(citations []policyModel.Citation) []policyModel.SectionLabel {
	seen := make(map[policyModel.SectionLabel]struct{})
	for _, c := range citations {
		seen[c.Section] = struct{}{}
	}
	sections := make([]policyModel.SectionLabel, 0, len(seen))
	for s := range seen {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i] < sections[j] })
	return sections
}
