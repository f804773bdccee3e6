package verifier

import (
	"strings"
	"unicode"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

const (
	minClaimLength = 30
	maxClaimLength = 500

	heuristicNumericTerm        = "numeric_term"
	heuristicCoverageAssertion  = "coverage_assertion"
	heuristicExclusionAssertion = "exclusion_assertion"
)

var coverageCues = []string{
	"covered", "covers", "coverage", "payable", "reimbursed", "eligible",
	"कवर", "शामिल", "देय", "कव्हर", "समाविष्ट",
}

var exclusionCues = []string{
	"not covered", "excluded", "exclusion", "not payable", "does not cover",
	"शामिल नहीं", "कवर नहीं", "बहिष्कृत", "वगळले", "कव्हर नाही",
}

var durationCues = []string{
	"month", "year", "day", "period", "महीने", "वर्ष", "दिन", "साल",
	"महिने", "दिवस", "अवधि", "कालावधी",
}

// ExtractClaims splits an answer into sentences and keeps the ones that make
// a checkable factual assertion about the policy. Politeness, hedges and
// navigation text carry no heuristic and are dropped.
func ExtractClaims(answer policyModel.Answer) []policyModel.Claim {
	sentences := splitSentences(answer.Text)
	claims := make([]policyModel.Claim, 0, len(sentences))
	seen := make(map[string]struct{})

	for _, sentence := range sentences {
		length := len([]rune(sentence))
		if length < minClaimLength || length > maxClaimLength {
			continue
		}
		heuristic := classify(sentence)
		if heuristic == "" {
			continue
		}
		key := normalizeClaim(sentence)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		claims = append(claims, policyModel.Claim{
			Text:      sentence,
			Heuristic: heuristic,
			Citations: answer.Citations,
			Outcome:   policyModel.ClaimInconclusive,
		})
	}
	return claims
}

// classify returns the first matching heuristic, most specific first: an
// exclusion sentence usually also contains coverage wording.
func classify(sentence string) string {
	lowered := strings.ToLower(sentence)

	for _, cue := range exclusionCues {
		if strings.Contains(lowered, cue) {
			return heuristicExclusionAssertion
		}
	}
	if hasDigit(lowered) {
		for _, cue := range durationCues {
			if strings.Contains(lowered, cue) {
				return heuristicNumericTerm
			}
		}
		if strings.ContainsAny(lowered, "%₹") || strings.Contains(lowered, "rupee") || strings.Contains(lowered, "रुपये") || strings.Contains(lowered, "रुपए") {
			return heuristicNumericTerm
		}
	}
	for _, cue := range coverageCues {
		if strings.Contains(lowered, cue) {
			return heuristicCoverageAssertion
		}
	}
	return ""
}

func splitSentences(text string) []string {
	// '।' is the Devanagari sentence terminator.
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '।' || r == '\n'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func normalizeClaim(sentence string) string {
	return strings.Join(strings.Fields(strings.ToLower(sentence)), " ")
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
