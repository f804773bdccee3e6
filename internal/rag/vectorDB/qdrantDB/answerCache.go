package qdrantDB

import (
	"encoding/json"
	"time"

	"context"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/qdrant/go-client/qdrant"
)

// The answer cache keys verified answers by query embedding. A near-identical
// question in any language lands on the same vector neighborhood, so the
// cutoff has to stay high to avoid serving a cached answer for a merely
// similar question.

func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32) (policyModel.Answer, bool, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	var answer policyModel.Answer

	if err := checkDimension(queryVector); err != nil {
		return answer, false, err
	}

	searchResult, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.AnswerCacheCollectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil || len(searchResult) == 0 {
		return answer, false, err
	}

	if float64(searchResult[0].Score) < config.AnswerCacheSimilarityCutoff {
		return answer, false, nil
	}

	raw := searchResult[0].Payload["answer"].GetStringValue()
	if err = json.Unmarshal([]byte(raw), &answer); err != nil {
		loggr.Error("Corrupt cached answer", "error", err)
		return answer, false, nil
	}

	loggr.Debug("answer cache hit", "score", searchResult[0].Score)
	return answer, true, nil
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, answer policyModel.Answer) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if err := checkDimension(vector); err != nil {
		return err
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}

	_, err = db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.AnswerCacheCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      pointID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    string(data),
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
