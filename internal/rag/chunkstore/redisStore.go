package chunkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/data/redisStore"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// RedisStore persists document and chunk metadata so that a restarted node
// can honor delete-by-id and serve citations without a full re-ingest.
// Chunk text lives here; vectors live in the embedding index only.
type RedisStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisStore(ctx context.Context) *RedisStore {
	st := redisStore.GetRedisStore(ctx, config.RedisChunkStore)
	if st == nil {
		return nil
	}
	return &RedisStore{
		store:  st,
		logger: logger_i.NewLogger("ChunkStore"),
	}
}

func TestRedisStore(store *redisStore.Store) *RedisStore {
	return &RedisStore{
		store:  store,
		logger: logger_i.NewLogger("test chunkstore"),
	}
}

func docKey(docId string) string     { return "doc:" + docId }
func chunkKey(chunkId string) string { return "chunk:" + chunkId }

func (s *RedisStore) PutDocument(ctx context.Context, doc policyModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "docId", doc.Id)
	if doc.Id == "" {
		return fmt.Errorf("document id is required")
	}
	if err := policyModel.ValidateChunks(doc.Id, doc.Chunks); err != nil {
		return fmt.Errorf("document %s: %w", doc.Id, err)
	}

	// drop any previous version first so a shrinking re-ingest leaves no orphans
	if err := s.DeleteDocument(ctx, doc.Id); err != nil {
		return err
	}

	for _, c := range doc.Chunks {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if err := s.store.Set(ctx, chunkKey(c.Id), data, 0); err != nil {
			return fmt.Errorf("saving chunk %s: %w", c.Id, err)
		}
	}

	header := doc
	header.Chunks = nil
	data, err := json.Marshal(header)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, docKey(doc.Id), data, 0); err != nil {
		return err
	}
	for _, c := range doc.Chunks {
		if err := s.store.ListPush(ctx, docKey(doc.Id)+":chunks", c.Id); err != nil {
			return err
		}
	}
	log.Debug("stored document", "chunks", len(doc.Chunks))
	return nil
}

func (s *RedisStore) GetDocument(ctx context.Context, docId string) (policyModel.Document, bool) {
	var doc policyModel.Document
	val, err := s.store.Get(ctx, docKey(docId))
	if err != nil {
		return doc, false
	}
	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false
	}
	chunks, err := s.Chunks(ctx, docId)
	if err != nil {
		return doc, false
	}
	doc.Chunks = chunks
	return doc, true
}

func (s *RedisStore) GetChunk(ctx context.Context, chunkId string) (policyModel.Chunk, bool) {
	var chunk policyModel.Chunk
	val, err := s.store.Get(ctx, chunkKey(chunkId))
	if err != nil {
		return chunk, false
	}
	if err = json.Unmarshal([]byte(val), &chunk); err != nil {
		return chunk, false
	}
	return chunk, true
}

func (s *RedisStore) Chunks(ctx context.Context, docId string) ([]policyModel.Chunk, error) {
	ids, err := s.store.ListGetAll(ctx, docKey(docId)+":chunks")
	if err != nil {
		return nil, err
	}
	chunks := make([]policyModel.Chunk, 0, len(ids))
	for _, id := range ids {
		c, found := s.GetChunk(ctx, id)
		if !found {
			return nil, fmt.Errorf("chunk %s referenced by document %s is missing", id, docId)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (s *RedisStore) Documents(ctx context.Context) ([]policyModel.Document, error) {
	keys, err := s.store.Keys(ctx, "doc:*")
	if err != nil {
		return nil, err
	}
	docs := make([]policyModel.Document, 0, len(keys))
	for _, key := range keys {
		// chunk id lists share the doc prefix
		if strings.HasSuffix(key, ":chunks") {
			continue
		}
		val, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		var doc policyModel.Document
		if err := json.Unmarshal([]byte(val), &doc); err != nil {
			return nil, fmt.Errorf("corrupt document header at %s: %w", key, err)
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Id < docs[j].Id })
	return docs, nil
}

func (s *RedisStore) DeleteDocument(ctx context.Context, docId string) error {
	ids, err := s.store.ListGetAll(ctx, docKey(docId)+":chunks")
	if err != nil && !s.store.IsNil(err) {
		return err
	}
	for _, id := range ids {
		if err := s.store.Del(ctx, chunkKey(id)); err != nil {
			return err
		}
	}
	return s.store.Del(ctx, docKey(docId), docKey(docId)+":chunks")
}
