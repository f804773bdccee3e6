package verifier

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/metrics"
	"github.com/nitivista/policyqa/internal/rag/language"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// Lookup is the external fact-checking capability. Implementations resolve a
// single claim against an authoritative source.
type Lookup interface {
	Lookup(ctx context.Context, claim string) (policyModel.LookupResult, error)
}

// Verifier cross-checks an answer's claims after generation. It only ever
// downgrades or annotates the answer; a broken lookup backend degrades the
// verification status, it never fails the query.
type Verifier interface {
	Verify(ctx context.Context, answer policyModel.Answer) policyModel.Answer
}

type verifier struct {
	lookup Lookup
	cache  *gocache.Cache
	cfg    config.PipelineConfig
	logger *logger_i.Logger
}

func InitVerifier(lookup Lookup, cfg config.PipelineConfig) Verifier {
	return &verifier{
		lookup: lookup,
		cache:  gocache.New(cfg.LookupCacheTTL, 2*cfg.LookupCacheTTL),
		cfg:    cfg,
		logger: logger_i.NewLogger("verifier"),
	}
}

func (v *verifier) Verify(ctx context.Context, answer policyModel.Answer) policyModel.Answer {
	claims := ExtractClaims(answer)
	if len(claims) == 0 {
		answer.Verification = policyModel.VerificationUnverified
		metrics.CaptureVerificationOutcome(string(answer.Verification))
		return answer
	}

	degraded := v.resolveClaims(ctx, claims)
	answer.Claims = claims
	answer.LookupDegraded = degraded

	supported, contradicted := 0, 0
	for _, claim := range claims {
		switch claim.Outcome {
		case policyModel.ClaimSupported:
			supported++
		case policyModel.ClaimContradicted:
			contradicted++
		}
	}

	switch {
	case contradicted > 0:
		answer.Verification = policyModel.VerificationContradicted
		if answer.Confidence > v.cfg.ContradictedCap {
			answer.Confidence = v.cfg.ContradictedCap
		}
	case supported == len(claims):
		answer.Verification = policyModel.VerificationVerified
		answer.Confidence += v.cfg.SupportedBoost
		if answer.Confidence > 1 {
			answer.Confidence = 1
		}
	default:
		answer.Verification = policyModel.VerificationInconclusive
	}

	if answer.Confidence < v.cfg.ConfidenceFloor && !answer.Disclaimed {
		answer.Text = answer.Text + "\n\n" + language.Disclaimer(answer.Language)
		answer.Disclaimed = true
	}

	metrics.CaptureVerificationOutcome(string(answer.Verification))
	return answer
}

// resolveClaims fans the claims out to the lookup backend under a shared
// stage deadline and a concurrency cap. Claims whose lookup errors or misses
// the deadline stay inconclusive. Returns whether any lookup degraded.
func (v *verifier) resolveClaims(ctx context.Context, claims []policyModel.Claim) bool {
	stageCtx, cancel := context.WithTimeout(ctx, v.cfg.VerifyTimeout)
	defer cancel()

	sem := make(chan struct{}, v.cfg.VerifyConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	degraded := false

	for i := range claims {
		wg.Add(1)
		go func(claim *policyModel.Claim) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-stageCtx.Done():
				mu.Lock()
				degraded = true
				mu.Unlock()
				return
			}

			result, err := v.lookupOne(stageCtx, claim.Text)
			if err != nil {
				v.logger.Warn("claim lookup failed", "heuristic", claim.Heuristic, "error", err)
				mu.Lock()
				degraded = true
				mu.Unlock()
				return
			}
			claim.Outcome = result.Outcome
			claim.EvidenceRefs = result.EvidenceRefs
		}(&claims[i])
	}
	wg.Wait()
	return degraded
}

// lookupOne memoizes by normalized claim text so repeated answers about the
// same policy terms do not hammer the backend within the cache window.
func (v *verifier) lookupOne(ctx context.Context, claimText string) (policyModel.LookupResult, error) {
	key := normalizeClaim(claimText)
	if cached, ok := v.cache.Get(key); ok {
		return cached.(policyModel.LookupResult), nil
	}

	result, err := v.lookup.Lookup(ctx, claimText)
	if err != nil {
		return policyModel.LookupResult{}, err
	}
	v.cache.SetDefault(key, result)
	return result, nil
}
