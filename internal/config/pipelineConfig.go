package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// PipelineConfig holds the tunable retrieval/generation/verification knobs.
// Weights are explicit validated fields instead of an untyped map so that a
// bad deployment (negative weight, zero weight sum) fails at startup.
type PipelineConfig struct {
	//retriever
	SemanticWeight   float64
	KeywordWeight    float64
	FuzzyMaxDistance int
	CoarseTopN       int
	CoarseThreshold  float64
	SectionTopK      int
	PassageTopK      int
	MinRelevance     float64

	//generator
	MaxContextChars   int
	Samples           int
	ConfidenceFloor   float64
	RetrievalBlend    float64
	AgreementBlend    float64
	CertaintyBlend    float64
	GenerationTimeout time.Duration

	//verifier
	VerifyTimeout     time.Duration
	VerifyConcurrency int
	LookupCacheTTL    time.Duration
	SupportedBoost    float64
	ContradictedCap   float64
}

// LoadPipelineConfig reads tunables from POLICYQA_* env vars (and an optional
// yaml file pointed at by POLICYQA_CONFIG) on top of the defaults below.
// Marathi and other low-embedding-coverage corpora are served by raising
// keyword_weight without a rebuild.
func LoadPipelineConfig() (PipelineConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POLICYQA")
	v.AutomaticEnv()

	v.SetDefault("semantic_weight", 0.7)
	v.SetDefault("keyword_weight", 0.3)
	v.SetDefault("fuzzy_max_distance", 2)
	v.SetDefault("coarse_top_n", 10)
	v.SetDefault("coarse_threshold", 0.35)
	v.SetDefault("section_top_k", 20)
	v.SetDefault("passage_top_k", 5)
	v.SetDefault("min_relevance", 0.25)

	v.SetDefault("max_context_chars", 6000)
	v.SetDefault("samples", 3)
	v.SetDefault("confidence_floor", 0.5)
	v.SetDefault("retrieval_blend", 0.5)
	v.SetDefault("agreement_blend", 0.35)
	v.SetDefault("certainty_blend", 0.15)
	v.SetDefault("generation_timeout", 20*time.Second)

	v.SetDefault("verify_timeout", 10*time.Second)
	v.SetDefault("verify_concurrency", 8)
	v.SetDefault("lookup_cache_ttl", 15*time.Minute)
	v.SetDefault("supported_boost", 0.1)
	v.SetDefault("contradicted_cap", 0.3)

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return PipelineConfig{}, fmt.Errorf("reading pipeline config file: %w", err)
		}
	}

	cfg := PipelineConfig{
		SemanticWeight:    v.GetFloat64("semantic_weight"),
		KeywordWeight:     v.GetFloat64("keyword_weight"),
		FuzzyMaxDistance:  v.GetInt("fuzzy_max_distance"),
		CoarseTopN:        v.GetInt("coarse_top_n"),
		CoarseThreshold:   v.GetFloat64("coarse_threshold"),
		SectionTopK:       v.GetInt("section_top_k"),
		PassageTopK:       v.GetInt("passage_top_k"),
		MinRelevance:      v.GetFloat64("min_relevance"),
		MaxContextChars:   v.GetInt("max_context_chars"),
		Samples:           v.GetInt("samples"),
		ConfidenceFloor:   v.GetFloat64("confidence_floor"),
		RetrievalBlend:    v.GetFloat64("retrieval_blend"),
		AgreementBlend:    v.GetFloat64("agreement_blend"),
		CertaintyBlend:    v.GetFloat64("certainty_blend"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		VerifyTimeout:     v.GetDuration("verify_timeout"),
		VerifyConcurrency: v.GetInt("verify_concurrency"),
		LookupCacheTTL:    v.GetDuration("lookup_cache_ttl"),
		SupportedBoost:    v.GetFloat64("supported_boost"),
		ContradictedCap:   v.GetFloat64("contradicted_cap"),
	}

	if err := cfg.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}

func (c PipelineConfig) Validate() error {
	if c.SemanticWeight < 0 || c.KeywordWeight < 0 {
		return fmt.Errorf("retrieval weights must be non-negative, got semantic=%v keyword=%v", c.SemanticWeight, c.KeywordWeight)
	}
	if c.SemanticWeight+c.KeywordWeight == 0 {
		return fmt.Errorf("at least one retrieval weight must be positive")
	}
	if c.FuzzyMaxDistance < 0 {
		return fmt.Errorf("fuzzy_max_distance must be non-negative, got %d", c.FuzzyMaxDistance)
	}
	if c.CoarseTopN <= 0 || c.SectionTopK <= 0 || c.PassageTopK <= 0 {
		return fmt.Errorf("retrieval depths must be positive")
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence_floor must be in [0,1], got %v", c.ConfidenceFloor)
	}
	if c.RetrievalBlend < 0 || c.AgreementBlend < 0 || c.CertaintyBlend < 0 {
		return fmt.Errorf("confidence blend weights must be non-negative")
	}
	if c.RetrievalBlend+c.AgreementBlend+c.CertaintyBlend == 0 {
		return fmt.Errorf("at least one confidence blend weight must be positive")
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", c.Samples)
	}
	if c.ContradictedCap < 0 || c.ContradictedCap > 1 {
		return fmt.Errorf("contradicted_cap must be in [0,1], got %v", c.ContradictedCap)
	}
	if c.VerifyConcurrency <= 0 {
		return fmt.Errorf("verify_concurrency must be positive, got %d", c.VerifyConcurrency)
	}
	return nil
}
