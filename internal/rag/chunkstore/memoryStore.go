package chunkstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]policyModel.Document
	chunks map[string]policyModel.Chunk

	//per-document write serialization
	docLocksMu sync.Mutex
	docLocks   map[string]*sync.Mutex

	logger *logger_i.Logger
}

func InitInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		docs:     make(map[string]policyModel.Document),
		chunks:   make(map[string]policyModel.Chunk),
		docLocks: make(map[string]*sync.Mutex),
		logger:   logger_i.NewLogger("InMem ChunkStore"),
	}
}

func (s *InMemoryStore) docLock(docId string) *sync.Mutex {
	s.docLocksMu.Lock()
	defer s.docLocksMu.Unlock()
	l, ok := s.docLocks[docId]
	if !ok {
		l = new(sync.Mutex)
		s.docLocks[docId] = l
	}
	return l
}

func (s *InMemoryStore) PutDocument(ctx context.Context, doc policyModel.Document) error {
	if doc.Id == "" {
		return fmt.Errorf("document id is required")
	}
	if err := policyModel.ValidateChunks(doc.Id, doc.Chunks); err != nil {
		return fmt.Errorf("document %s: %w", doc.Id, err)
	}

	lock := s.docLock(doc.Id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// re-ingest replaces wholesale, stale chunks must not survive
	if old, ok := s.docs[doc.Id]; ok {
		for _, c := range old.Chunks {
			delete(s.chunks, c.Id)
		}
	}

	s.docs[doc.Id] = doc
	for _, c := range doc.Chunks {
		s.chunks[c.Id] = c
	}
	s.logger.Debug("stored document", "docId", doc.Id, "chunks", len(doc.Chunks))
	return nil
}

func (s *InMemoryStore) GetDocument(ctx context.Context, docId string) (policyModel.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docId]
	return doc, ok
}

func (s *InMemoryStore) GetChunk(ctx context.Context, chunkId string) (policyModel.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[chunkId]
	return c, ok
}

func (s *InMemoryStore) Chunks(ctx context.Context, docId string) ([]policyModel.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docId]
	if !ok {
		return nil, fmt.Errorf("document %s not found", docId)
	}
	out := make([]policyModel.Chunk, len(doc.Chunks))
	copy(out, doc.Chunks)
	return out, nil
}

func (s *InMemoryStore) Documents(ctx context.Context) ([]policyModel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]policyModel.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		header := doc
		header.Chunks = nil
		out = append(out, header)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (s *InMemoryStore) DeleteDocument(ctx context.Context, docId string) error {
	lock := s.docLock(docId)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docId]
	if !ok {
		return nil
	}
	for _, c := range doc.Chunks {
		delete(s.chunks, c.Id)
	}
	delete(s.docs, docId)
	s.logger.Debug("deleted document", "docId", docId)
	return nil
}
