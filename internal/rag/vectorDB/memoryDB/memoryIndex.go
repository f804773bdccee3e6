package memoryDB

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

type chunkEntry struct {
	docId   string
	section policyModel.SectionLabel
	vector  []float32
}

type answerEntry struct {
	vector []float32
	answer policyModel.Answer
}

// Index is a brute-force cosine index. It backs tests and acts as the
// fallback when qdrant is unreachable, the same way the job stores fall
// back to memory when redis is offline.
type Index struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[string]chunkEntry
	docs      map[string][]float32
	answers   map[string]answerEntry

	cacheCutoff float64
	logger      *logger_i.Logger
}

func InitMemoryIndex(dimension int, cacheCutoff float64) *Index {
	return &Index{
		dimension:   dimension,
		chunks:      make(map[string]chunkEntry),
		docs:        make(map[string][]float32),
		answers:     make(map[string]answerEntry),
		cacheCutoff: cacheCutoff,
		logger:      logger_i.NewLogger("InMem VectorIndex"),
	}
}

func (x *Index) checkDimension(vector []float32) error {
	if len(vector) != x.dimension {
		return &policyModel.InvalidVectorError{Got: len(vector), Want: x.dimension}
	}
	return nil
}

func (x *Index) IndexChunk(ctx context.Context, chunk policyModel.Chunk) error {
	if err := x.checkDimension(chunk.Vector); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	// same id overwrites, never duplicates
	x.chunks[chunk.Id] = chunkEntry{
		docId:   chunk.DocId,
		section: chunk.Section,
		vector:  chunk.Vector,
	}
	return nil
}

func (x *Index) IndexDocument(ctx context.Context, doc policyModel.Document, vector []float32) error {
	if err := x.checkDimension(vector); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs[doc.Id] = vector
	return nil
}

func (x *Index) SearchChunks(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
	if err := x.checkDimension(vector); err != nil {
		return nil, err
	}

	allowDoc := toSet(filter.DocIds)
	allowSection := make(map[policyModel.SectionLabel]bool, len(filter.Sections))
	for _, s := range filter.Sections {
		allowSection[s] = true
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []vectorDB.ChunkHit
	for id, entry := range x.chunks {
		if len(allowDoc) > 0 && !allowDoc[entry.docId] {
			continue
		}
		if len(allowSection) > 0 && !allowSection[entry.section] {
			continue
		}
		hits = append(hits, vectorDB.ChunkHit{
			ChunkId: id,
			DocId:   entry.docId,
			Score:   cosineSimilarity(vector, entry.vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkId < hits[j].ChunkId
	})
	if uint64(len(hits)) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (x *Index) SearchDocuments(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
	if err := x.checkDimension(vector); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []vectorDB.DocHit
	for id, v := range x.docs {
		hits = append(hits, vectorDB.DocHit{DocId: id, Score: cosineSimilarity(vector, v)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocId < hits[j].DocId
	})
	if uint64(len(hits)) > n {
		hits = hits[:n]
	}
	return hits, nil
}

func (x *Index) DeleteDocument(ctx context.Context, docId string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, docId)
	for id, entry := range x.chunks {
		if entry.docId == docId {
			delete(x.chunks, id)
		}
	}
	return nil
}

func (x *Index) GetCachedAnswer(ctx context.Context, queryVector []float32) (policyModel.Answer, bool, error) {
	if err := x.checkDimension(queryVector); err != nil {
		return policyModel.Answer{}, false, err
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	best := -1.0
	var bestAnswer policyModel.Answer
	for _, entry := range x.answers {
		if score := cosineSimilarity(queryVector, entry.vector); score > best {
			best = score
			bestAnswer = entry.answer
		}
	}
	if best < x.cacheCutoff {
		return policyModel.Answer{}, false, nil
	}
	return bestAnswer, true, nil
}

func (x *Index) SaveToCache(ctx context.Context, id string, vector []float32, answer policyModel.Answer) error {
	if err := x.checkDimension(vector); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.answers[id] = answerEntry{vector: vector, answer: answer}
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
