package qdrantDB

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/internal/rag/vectorDB"
	"github.com/nitivista/policyqa/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	for _, name := range []string{
		config.ChunkCollectionName,
		config.DocSummaryCollectionName,
		config.AnswerCacheCollectionName,
	} {
		if err = createCollection(ctx, client, name); err != nil {
			logger.Error("could not create collection: ", "collectionName", name, "error:", err)
			return nil
		}
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// pointUUID derives a stable UUID from an external identifier. Document and
// chunk ids are the uploading collaborator's choice and rarely UUIDs, but
// qdrant only accepts UUID or integer point ids. The external id itself
// stays in the payload.
func pointUUID(externalId string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(externalId)).String()
}

func pointID(externalId string) *qdrant.PointId {
	return qdrant.NewID(pointUUID(externalId))
}

func checkDimension(vector []float32) error {
	if uint64(len(vector)) != dimension {
		return &policyModel.InvalidVectorError{Got: len(vector), Want: int(dimension)}
	}
	return nil
}

func (db *ClientHolder) IndexChunk(ctx context.Context, chunk policyModel.Chunk) error {
	if err := checkDimension(chunk.Vector); err != nil {
		return err
	}

	// qdrant upserts by id, so re-indexing the same chunk id overwrites
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.ChunkCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      pointID(chunk.Id),
				Vectors: qdrant.NewVectors(chunk.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"chunk_id":     chunk.Id,
					"doc_id":       chunk.DocId,
					"section":      string(chunk.Section),
					"language":     string(chunk.Language),
					"start_offset": int64(chunk.StartOffset),
				}),
			},
		},
		Wait: qdrant.PtrOf(true),
	})
	return err
}

func (db *ClientHolder) IndexDocument(ctx context.Context, doc policyModel.Document, vector []float32) error {
	if err := checkDimension(vector); err != nil {
		return err
	}
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.DocSummaryCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      pointID(doc.Id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"doc_id":      doc.Id,
					"language":    string(doc.Language),
					"ingested_at": doc.IngestedAt.Unix(),
				}),
			},
		},
		Wait: qdrant.PtrOf(true),
	})
	return err
}

func (db *ClientHolder) SearchChunks(ctx context.Context, vector []float32, k uint64, filter vectorDB.ChunkFilter) ([]vectorDB.ChunkHit, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := checkDimension(vector); err != nil {
		return nil, err
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.ChunkCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(k),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildFilter(filter),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := make([]vectorDB.ChunkHit, 0, len(result))
	for _, hit := range result {
		hits = append(hits, vectorDB.ChunkHit{
			ChunkId: hit.Payload["chunk_id"].GetStringValue(),
			DocId:   hit.Payload["doc_id"].GetStringValue(),
			Score:   float64(hit.Score),
		})
	}
	return hits, nil
}

func (db *ClientHolder) SearchDocuments(ctx context.Context, vector []float32, n uint64) ([]vectorDB.DocHit, error) {
	if err := checkDimension(vector); err != nil {
		return nil, err
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.DocSummaryCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(n),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	hits := make([]vectorDB.DocHit, 0, len(result))
	for _, hit := range result {
		hits = append(hits, vectorDB.DocHit{
			DocId: hit.Payload["doc_id"].GetStringValue(),
			Score: float64(hit.Score),
		})
	}
	return hits, nil
}

func (db *ClientHolder) DeleteDocument(ctx context.Context, docId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: config.ChunkCollectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchKeyword("doc_id", docId)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return err
	}
	_, err = db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: config.DocSummaryCollectionName,
		Points:         qdrant.NewPointsSelector(pointID(docId)),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func buildFilter(filter vectorDB.ChunkFilter) *qdrant.Filter {
	var must []*qdrant.Condition
	if len(filter.DocIds) > 0 {
		must = append(must, qdrant.NewMatchKeywords("doc_id", filter.DocIds...))
	}
	if len(filter.Sections) > 0 {
		sections := make([]string, len(filter.Sections))
		for i, s := range filter.Sections {
			sections[i] = string(s)
		}
		must = append(must, qdrant.NewMatchKeywords("section", sections...))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
