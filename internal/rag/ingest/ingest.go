package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/metrics"
	"github.com/nitivista/policyqa/internal/rag/chunkstore"
	"github.com/nitivista/policyqa/internal/rag/embedding"
	"github.com/nitivista/policyqa/internal/rag/language"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// summaryChunkLimit caps how many leading chunks feed a synthesized summary
// when the upload carries none of its own.
const summaryChunkLimit = 3

// Ingestor owns document writes: normalization, embedding, the chunk store
// and both index collections. A re-upload of the same document id replaces
// the previous version wholesale.
type Ingestor interface {
	IngestDocument(ctx context.Context, doc policyModel.Document) error
	DeleteDocument(ctx context.Context, docId string) error
	ListDocuments(ctx context.Context) ([]policyModel.Document, error)
}

type ingestor struct {
	embedder embedding.Embedder
	index    vectorDB.VectorIndex
	chunks   chunkstore.Store

	// writes to the store and the index for one document id must not
	// interleave, or a concurrent re-ingest leaves chunks of both versions
	// live in the index
	docLocksMu sync.Mutex
	docLocks   map[string]*sync.Mutex

	logger *logger_i.Logger
}

func InitIngestor(embedder embedding.Embedder, index vectorDB.VectorIndex, chunks chunkstore.Store) Ingestor {
	return &ingestor{
		embedder: embedder,
		index:    index,
		chunks:   chunks,
		docLocks: make(map[string]*sync.Mutex),
		logger:   logger_i.NewLogger("ingest"),
	}
}

func (in *ingestor) docLock(docId string) *sync.Mutex {
	in.docLocksMu.Lock()
	defer in.docLocksMu.Unlock()
	l, ok := in.docLocks[docId]
	if !ok {
		l = new(sync.Mutex)
		in.docLocks[docId] = l
	}
	return l
}

func (in *ingestor) IngestDocument(ctx context.Context, doc policyModel.Document) error {
	start := time.Now()

	normalized, err := normalize(doc)
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(normalized.Chunks)+1)
	for _, c := range normalized.Chunks {
		texts = append(texts, c.Text)
	}
	texts = append(texts, normalized.Summary)

	vectors, err := in.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding document %s: %w", normalized.Id, err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding document %s: got %d vectors for %d texts", normalized.Id, len(vectors), len(texts))
	}
	for i := range normalized.Chunks {
		normalized.Chunks[i].Vector = vectors[i]
	}
	summaryVector := vectors[len(vectors)-1]

	// embedding ran outside the lock; everything that mutates state for this
	// document id runs under it
	lock := in.docLock(normalized.Id)
	lock.Lock()
	defer lock.Unlock()

	if err := in.chunks.PutDocument(ctx, normalized); err != nil {
		return err
	}

	// drop the previous index entries first so chunks removed by the
	// re-upload cannot linger as stale hits
	if err := in.index.DeleteDocument(ctx, normalized.Id); err != nil {
		return fmt.Errorf("clearing index for document %s: %w", normalized.Id, err)
	}
	for _, c := range normalized.Chunks {
		if err := in.index.IndexChunk(ctx, c); err != nil {
			return fmt.Errorf("indexing chunk %s: %w", c.Id, err)
		}
	}
	if err := in.index.IndexDocument(ctx, normalized, summaryVector); err != nil {
		return fmt.Errorf("indexing document summary %s: %w", normalized.Id, err)
	}

	metrics.CaptureExecutionMetrics("ingest", time.Since(start))
	in.logger.Info("document ingested", "docId", normalized.Id, "chunks", len(normalized.Chunks))
	return nil
}

func (in *ingestor) DeleteDocument(ctx context.Context, docId string) error {
	lock := in.docLock(docId)
	lock.Lock()
	defer lock.Unlock()

	if err := in.index.DeleteDocument(ctx, docId); err != nil {
		return fmt.Errorf("deleting document %s from index: %w", docId, err)
	}
	if err := in.chunks.DeleteDocument(ctx, docId); err != nil {
		return fmt.Errorf("deleting document %s from store: %w", docId, err)
	}
	in.logger.Info("document deleted", "docId", docId)
	return nil
}

func (in *ingestor) ListDocuments(ctx context.Context) ([]policyModel.Document, error) {
	return in.chunks.Documents(ctx)
}

// normalize fills the fields uploads are allowed to omit and validates the
// chunk layout before anything touches storage.
func normalize(doc policyModel.Document) (policyModel.Document, error) {
	if doc.Id == "" {
		return policyModel.Document{}, fmt.Errorf("document id is required")
	}
	if len(doc.Chunks) == 0 {
		return policyModel.Document{}, fmt.Errorf("document %s has no chunks", doc.Id)
	}

	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	for i := range doc.Chunks {
		c := &doc.Chunks[i]
		c.Text = collapseWhitespace(c.Text)
		c.DocId = doc.Id
		if c.Id == "" {
			c.Id = uuid.NewString()
		}
		if c.Section == "" {
			c.Section = policyModel.SectionGeneral
		}
		if c.Language == "" {
			if doc.Language != "" {
				c.Language = doc.Language
			} else {
				c.Language = language.Detect(c.Text)
			}
		}
	}
	if doc.Language == "" {
		doc.Language = doc.Chunks[0].Language
	}

	if err := policyModel.ValidateChunks(doc.Id, doc.Chunks); err != nil {
		return policyModel.Document{}, fmt.Errorf("document %s: %w", doc.Id, err)
	}

	if strings.TrimSpace(doc.Summary) == "" {
		doc.Summary = synthesizeSummary(doc.Chunks)
	}
	return doc, nil
}

func synthesizeSummary(chunks []policyModel.Chunk) string {
	limit := summaryChunkLimit
	if len(chunks) < limit {
		limit = len(chunks)
	}
	parts := make([]string, 0, limit)
	for _, c := range chunks[:limit] {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, " ")
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
