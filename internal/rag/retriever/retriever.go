package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/chunkstore"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// Retriever narrows the corpus in three passes: a coarse pass over document
// summaries, a section pass restricted to the admitted documents, and a
// passage pass that re-scores the surviving chunks with the lexical
// strategies blended in.
type Retriever interface {
	Retrieve(ctx context.Context, query policyModel.Query, queryVector []float32) (policyModel.RetrievalResult, error)
}

type retriever struct {
	index      vectorDB.VectorIndex
	chunks     chunkstore.Store
	strategies []Strategy
	cfg        config.PipelineConfig
	logger     *logger_i.Logger
}

func InitRetriever(index vectorDB.VectorIndex, chunks chunkstore.Store, cfg config.PipelineConfig) Retriever {
	return &retriever{
		index:  index,
		chunks: chunks,
		strategies: []Strategy{
			exactKeywordStrategy{},
			fuzzyKeywordStrategy{maxDistance: cfg.FuzzyMaxDistance},
		},
		cfg:    cfg,
		logger: logger_i.NewLogger("retriever"),
	}
}

func (r *retriever) Retrieve(ctx context.Context, query policyModel.Query, queryVector []float32) (policyModel.RetrievalResult, error) {
	docIds, err := r.coarsePass(ctx, queryVector)
	if err != nil {
		return policyModel.RetrievalResult{}, err
	}

	hits, err := r.sectionPass(ctx, query, queryVector, docIds)
	if err != nil {
		return policyModel.RetrievalResult{}, err
	}
	if len(hits) == 0 {
		return policyModel.RetrievalResult{}, policyModel.ErrNoMatch
	}

	matches, err := r.passagePass(ctx, query, hits)
	if err != nil {
		return policyModel.RetrievalResult{}, err
	}
	if len(matches) == 0 {
		return policyModel.RetrievalResult{}, policyModel.ErrNoMatch
	}
	return policyModel.RetrievalResult{Matches: matches}, nil
}

// coarsePass admits documents whose summary vector clears the coarse
// threshold. An empty admission set is a hard no-match, not an empty answer.
func (r *retriever) coarsePass(ctx context.Context, queryVector []float32) ([]string, error) {
	docHits, err := r.index.SearchDocuments(ctx, queryVector, uint64(r.cfg.CoarseTopN))
	if err != nil {
		return nil, fmt.Errorf("coarse document search: %w", err)
	}

	docIds := make([]string, 0, len(docHits))
	for _, hit := range docHits {
		if hit.Score >= r.cfg.CoarseThreshold {
			docIds = append(docIds, hit.DocId)
		}
	}
	if len(docIds) == 0 {
		r.logger.Debug("no document cleared coarse threshold", "candidates", len(docHits))
		return nil, policyModel.ErrNoMatch
	}
	return docIds, nil
}

// sectionPass searches chunks inside the admitted documents, first narrowed
// to the section labels the query wording suggests. A query that names no
// section, or whose named sections hold nothing relevant, falls back to an
// unrestricted search so the label inference can only help, never hide.
func (r *retriever) sectionPass(ctx context.Context, query policyModel.Query, queryVector []float32, docIds []string) ([]vectorDB.ChunkHit, error) {
	sections := inferSections(query.Text)
	if len(sections) > 0 {
		hits, err := r.index.SearchChunks(ctx, queryVector, uint64(r.cfg.SectionTopK), vectorDB.ChunkFilter{DocIds: docIds, Sections: sections})
		if err != nil {
			return nil, fmt.Errorf("section chunk search: %w", err)
		}
		if len(hits) > 0 {
			return hits, nil
		}
	}

	hits, err := r.index.SearchChunks(ctx, queryVector, uint64(r.cfg.SectionTopK), vectorDB.ChunkFilter{DocIds: docIds})
	if err != nil {
		return nil, fmt.Errorf("section chunk search: %w", err)
	}
	return hits, nil
}

// passagePass re-scores candidates as a weighted blend of the semantic hit
// score and the best lexical strategy score, drops everything below the
// relevance floor and returns the top passages in a deterministic order.
func (r *retriever) passagePass(ctx context.Context, query policyModel.Query, hits []vectorDB.ChunkHit) ([]policyModel.ScoredChunk, error) {
	queryTokens := tokenize(query.Text)
	weightSum := r.cfg.SemanticWeight + r.cfg.KeywordWeight

	scored := make([]policyModel.ScoredChunk, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	ingested := make(map[string]int64)

	for _, hit := range hits {
		if _, dup := seen[hit.ChunkId]; dup {
			continue
		}
		seen[hit.ChunkId] = struct{}{}

		chunk, ok := r.chunks.GetChunk(ctx, hit.ChunkId)
		if !ok {
			r.logger.Warn("indexed chunk missing from store", "chunkId", hit.ChunkId)
			continue
		}

		lexical := 0.0
		for _, s := range r.strategies {
			if score := s.Score(queryTokens, chunk); score > lexical {
				lexical = score
			}
		}
		score := (r.cfg.SemanticWeight*hit.Score + r.cfg.KeywordWeight*lexical) / weightSum
		if score < r.cfg.MinRelevance {
			continue
		}

		if _, cached := ingested[chunk.DocId]; !cached {
			ingested[chunk.DocId] = r.docIngestedAt(ctx, chunk.DocId)
		}
		scored = append(scored, policyModel.ScoredChunk{
			Chunk:       chunk,
			Score:       score,
			Granularity: policyModel.GranularityPassage,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ingested[a.Chunk.DocId] != ingested[b.Chunk.DocId] {
			return ingested[a.Chunk.DocId] > ingested[b.Chunk.DocId]
		}
		return a.Chunk.StartOffset < b.Chunk.StartOffset
	})

	if len(scored) > r.cfg.PassageTopK {
		scored = scored[:r.cfg.PassageTopK]
	}
	return scored, nil
}

func (r *retriever) docIngestedAt(ctx context.Context, docId string) int64 {
	doc, ok := r.chunks.GetDocument(ctx, docId)
	if !ok {
		return 0
	}
	return doc.IngestedAt.UnixNano()
}

var sectionCues = map[policyModel.SectionLabel][]string{
	policyModel.SectionExclusion: {"exclusion", "excluded", "not covered", "छूट", "बहिष्कृत", "वगळले"},
	policyModel.SectionClaims:    {"claim", "settlement", "reimburse", "दावा", "क्लेम", "दावे"},
	policyModel.SectionPremium:   {"premium", "installment", "grace period", "प्रीमियम", "हप्ता", "किस्त"},
	policyModel.SectionCoverage:  {"cover", "coverage", "covered", "benefit", "कवर", "संरक्षण", "लाभ"},
}

func inferSections(queryText string) []policyModel.SectionLabel {
	lowered := strings.ToLower(queryText)
	sections := make([]policyModel.SectionLabel, 0, 2)
	// exclusions before coverage: "is X excluded from coverage" is an
	// exclusions question even though it mentions cover.
	for _, label := range []policyModel.SectionLabel{
		policyModel.SectionExclusion,
		policyModel.SectionClaims,
		policyModel.SectionPremium,
		policyModel.SectionCoverage,
	} {
		for _, cue := range sectionCues[label] {
			if strings.Contains(lowered, cue) {
				sections = append(sections, label)
				break
			}
		}
	}
	return sections
}
