package verifier

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

type mockLookup struct {
	lookupFunc func(ctx context.Context, claim string) (policyModel.LookupResult, error)
}

func (m *mockLookup) Lookup(ctx context.Context, claim string) (policyModel.LookupResult, error) {
	return m.lookupFunc(ctx, claim)
}

func testVerifyConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ConfidenceFloor:   0.5,
		VerifyTimeout:     2 * time.Second,
		VerifyConcurrency: 4,
		LookupCacheTTL:    time.Minute,
		SupportedBoost:    0.1,
		ContradictedCap:   0.3,
	}
}

func factualAnswer(confidence float64) policyModel.Answer {
	return policyModel.Answer{
		Text: "Pre-existing diseases carry a waiting period of 48 months. " +
			"Cosmetic surgery is excluded from this policy.",
		Language:     policyModel.LangEnglish,
		Confidence:   confidence,
		Citations:    []policyModel.Citation{{ChunkId: "c-1", DocId: "doc-1", Section: policyModel.SectionExclusion}},
		Verification: policyModel.VerificationUnverified,
	}
}

func TestExtractClaims(t *testing.T) {
	answer := policyModel.Answer{
		Text: "Pre-existing diseases carry a waiting period of 48 months. " +
			"Cosmetic surgery is excluded from this policy. " +
			"Pre-existing diseases carry a waiting period of 48 months. " + // duplicate
			"I hope that helps. " + // no heuristic
			"Thanks!",
		Citations: []policyModel.Citation{{ChunkId: "c-1", DocId: "doc-1"}},
	}
	claims := ExtractClaims(answer)
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims after dedupe and filtering, got %d: %v", len(claims), claims)
	}
	if claims[0].Heuristic != heuristicNumericTerm {
		t.Errorf("expected numeric_term for waiting period claim, got %s", claims[0].Heuristic)
	}
	if claims[1].Heuristic != heuristicExclusionAssertion {
		t.Errorf("expected exclusion_assertion, got %s", claims[1].Heuristic)
	}
	if len(claims[0].Citations) != 1 {
		t.Errorf("claims must inherit the answer citations, got %v", claims[0].Citations)
	}
}

func TestExtractClaimsDevanagariSentences(t *testing.T) {
	answer := policyModel.Answer{
		Text: "पहले से मौजूद बीमारियों के लिए 48 महीने की प्रतीक्षा अवधि है। कॉस्मेटिक सर्जरी इस पॉलिसी में शामिल नहीं है।",
	}
	claims := ExtractClaims(answer)
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims from Devanagari text, got %d: %v", len(claims), claims)
	}
}

func TestVerifyAllSupportedBoostsConfidence(t *testing.T) {
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, claim string) (policyModel.LookupResult, error) {
			return policyModel.LookupResult{Outcome: policyModel.ClaimSupported, EvidenceRefs: []string{"ref-1"}}, nil
		},
	}
	v := InitVerifier(lookup, testVerifyConfig())

	answer := v.Verify(context.Background(), factualAnswer(0.8))
	if answer.Verification != policyModel.VerificationVerified {
		t.Fatalf("expected verified, got %v", answer.Verification)
	}
	if answer.Confidence != 0.9 {
		t.Errorf("expected confidence 0.8+0.1, got %v", answer.Confidence)
	}
	if answer.LookupDegraded {
		t.Error("clean lookups must not mark the answer degraded")
	}
	for _, claim := range answer.Claims {
		if claim.Outcome != policyModel.ClaimSupported || len(claim.EvidenceRefs) == 0 {
			t.Errorf("claim should carry outcome and evidence: %+v", claim)
		}
	}
}

func TestVerifyContradictionCapsConfidenceAndDisclaims(t *testing.T) {
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, claim string) (policyModel.LookupResult, error) {
			if strings.Contains(claim, "excluded") {
				return policyModel.LookupResult{Outcome: policyModel.ClaimContradicted}, nil
			}
			return policyModel.LookupResult{Outcome: policyModel.ClaimSupported}, nil
		},
	}
	v := InitVerifier(lookup, testVerifyConfig())

	answer := v.Verify(context.Background(), factualAnswer(0.9))
	if answer.Verification != policyModel.VerificationContradicted {
		t.Fatalf("expected contradicted, got %v", answer.Verification)
	}
	if answer.Confidence != 0.3 {
		t.Errorf("contradiction must cap confidence at 0.3, got %v", answer.Confidence)
	}
	if !answer.Disclaimed {
		t.Error("capped confidence below the floor must add a disclaimer")
	}
}

func TestVerifyLookupFailureDegradesNotFails(t *testing.T) {
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, claim string) (policyModel.LookupResult, error) {
			return policyModel.LookupResult{}, policyModel.ErrVerificationUnavailable
		},
	}
	v := InitVerifier(lookup, testVerifyConfig())

	answer := v.Verify(context.Background(), factualAnswer(0.8))
	if answer.Verification != policyModel.VerificationInconclusive {
		t.Fatalf("expected inconclusive, got %v", answer.Verification)
	}
	if !answer.LookupDegraded {
		t.Error("failed lookups must be flagged as degraded")
	}
	if answer.Confidence != 0.8 {
		t.Errorf("inconclusive verification must not change confidence, got %v", answer.Confidence)
	}
}

func TestVerifyTimeoutLeavesClaimsInconclusive(t *testing.T) {
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, claim string) (policyModel.LookupResult, error) {
			<-ctx.Done()
			return policyModel.LookupResult{}, ctx.Err()
		},
	}
	cfg := testVerifyConfig()
	cfg.VerifyTimeout = 20 * time.Millisecond
	v := InitVerifier(lookup, cfg)

	start := time.Now()
	answer := v.Verify(context.Background(), factualAnswer(0.8))
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("verification must respect its stage deadline, took %v", elapsed)
	}
	if answer.Verification != policyModel.VerificationInconclusive {
		t.Errorf("expected inconclusive after timeout, got %v", answer.Verification)
	}
	if !answer.LookupDegraded {
		t.Error("timeout must be flagged as degraded")
	}
}

func TestVerifyNoClaimsStaysUnverified(t *testing.T) {
	called := false
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, claim string) (policyModel.LookupResult, error) {
			called = true
			return policyModel.LookupResult{}, nil
		},
	}
	v := InitVerifier(lookup, testVerifyConfig())

	answer := v.Verify(context.Background(), policyModel.Answer{Text: "I do not know.", Confidence: 0.6})
	if answer.Verification != policyModel.VerificationUnverified {
		t.Errorf("expected unverified, got %v", answer.Verification)
	}
	if called {
		t.Error("no lookup should happen without claims")
	}
}

func TestVerifyMemoizesLookups(t *testing.T) {
	var calls int64
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, claim string) (policyModel.LookupResult, error) {
			atomic.AddInt64(&calls, 1)
			return policyModel.LookupResult{Outcome: policyModel.ClaimSupported}, nil
		},
	}
	v := InitVerifier(lookup, testVerifyConfig())

	v.Verify(context.Background(), factualAnswer(0.8))
	first := atomic.LoadInt64(&calls)
	v.Verify(context.Background(), factualAnswer(0.8))

	if got := atomic.LoadInt64(&calls); got != first {
		t.Errorf("repeat verification must be served from cache: %d then %d lookups", first, got)
	}
}
