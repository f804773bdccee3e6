package retriever

import (
	"strings"
	"unicode"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
)

// Strategy scores how well a chunk's text matches the query terms on a 0..1
// scale. Strategies are lexical only; semantic similarity comes from the
// vector index and is blended in by the retriever.
type Strategy interface {
	Name() string
	Score(queryTokens []string, chunk policyModel.Chunk) float64
}

type exactKeywordStrategy struct{}

func (exactKeywordStrategy) Name() string { return "exact_keyword" }

func (exactKeywordStrategy) Score(queryTokens []string, chunk policyModel.Chunk) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	chunkTokens := tokenSet(chunk.Text)
	matched := 0
	for _, t := range queryTokens {
		if _, ok := chunkTokens[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// fuzzyKeywordStrategy tolerates small edit distances so that OCR noise and
// inflected forms still count ("premiums" vs "premium", "waiting" vs
// "waitng"). Tokens shorter than 4 runes are matched exactly; a distance
// budget on them would match everything.
type fuzzyKeywordStrategy struct {
	maxDistance int
}

func (fuzzyKeywordStrategy) Name() string { return "fuzzy_keyword" }

func (s fuzzyKeywordStrategy) Score(queryTokens []string, chunk policyModel.Chunk) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	chunkTokens := tokenize(chunk.Text)
	matched := 0
	for _, q := range queryTokens {
		if s.matches(q, chunkTokens) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

func (s fuzzyKeywordStrategy) matches(query string, candidates []string) bool {
	queryLen := len([]rune(query))
	for _, c := range candidates {
		if c == query {
			return true
		}
		if queryLen < 4 || s.maxDistance == 0 {
			continue
		}
		candLen := len([]rune(c))
		if candLen-queryLen > s.maxDistance || queryLen-candLen > s.maxDistance {
			continue
		}
		if levenshteinDistance(query, c) <= s.maxDistance {
			return true
		}
	}
	return false
}

func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(min(curr[j-1]+1, prev[j]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "do": {},
	"does": {}, "my": {}, "i": {}, "of": {}, "in": {}, "on": {}, "for": {},
	"to": {}, "what": {}, "how": {}, "under": {}, "this": {}, "that": {},
	"और": {}, "का": {}, "की": {}, "के": {}, "है": {}, "क्या": {}, "में": {},
	"आहे": {}, "आणि": {}, "काय": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}
