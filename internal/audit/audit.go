package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/data/redisStore"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// Sink receives one record per answered query for compliance review.
// Emission is fire-and-forget from the pipeline's point of view; a failed
// sink never fails the query.
type Sink interface {
	Record(ctx context.Context, record policyModel.AuditRecord) error
}

type redisSink struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSink returns nil when redis is offline; callers fall back to the
// noop sink.
func GetRedisSink(ctx context.Context) Sink {
	store := redisStore.GetRedisStore(ctx, config.RedisAuditStore)
	if store == nil {
		return nil
	}
	return &redisSink{
		store:  store,
		logger: logger_i.NewLogger("Audit Sink"),
	}
}

// TestRedisSink wires an externally created store (miniredis in tests).
func TestRedisSink(store *redisStore.Store) Sink {
	return &redisSink{
		store:  store,
		logger: logger_i.NewLogger("Audit Sink"),
	}
}

func (s *redisSink) Record(ctx context.Context, record policyModel.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling audit record %s: %w", record.QueryId, err)
	}
	// TTL guarantees records cannot outlive the retention window even if
	// the compliance job misses a sweep
	if err := s.store.Set(ctx, "audit:"+record.QueryId, payload, config.RedisAuditStoreTTL); err != nil {
		return fmt.Errorf("writing audit record %s: %w", record.QueryId, err)
	}
	s.logger.Debug("audit record written", "queryId", record.QueryId)
	return nil
}

type noopSink struct{}

func NewNoopSink() Sink { return noopSink{} }

func (noopSink) Record(ctx context.Context, record policyModel.AuditRecord) error { return nil }
