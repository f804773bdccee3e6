package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nitivista/policyqa/internal/config"
	"github.com/nitivista/policyqa/internal/data/redisStore"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/pkg/logger_i"
)

// historyTurnLimit bounds how many prior turns a follow-up question may lean
// on; older turns age out of the prompt first.
const historyTurnLimit = 5

type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	internalStore := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if internalStore == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  internalStore,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) ValidateConversationId(ctx context.Context, conversationId string) bool {
	log := s.logger.With("conversation Id", conversationId)
	log.Debug("validating conversationId")
	isFound, err := s.store.Exists(ctx, conversationId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if conversationId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisConversationStore) TrySaveTurn(ctx context.Context, id string, payload jobModel.JobPayload) error {
	log := s.logger.With("conversation Id", id)
	if !s.ValidateConversationId(ctx, id) {
		err := errors.New("invalid conversation id")
		log.Error("Failed Validation before saving", "err", err)
		return err
	}
	return s.saveTurn(ctx, id, payload)
}

func (s *RedisConversationStore) saveTurn(ctx context.Context, id string, payload jobModel.JobPayload) error {
	log := s.logger.With("conversation Id", id)
	err := s.store.ListPush(ctx, id, marshallJson(payload, s.logger))
	if err != nil {
		log.Error("error saving turn", "error:", err)
		return err
	}
	if err := s.store.Expire(ctx, id, config.RedisConversationStoreTTL); err != nil {
		log.Error("error refreshing conversation ttl", "error:", err)
	}
	log.Debug("Saved turn successfully")
	return nil
}

func (s *RedisConversationStore) InitNewConversation(ctx context.Context, id string) error {
	log := s.logger.With("conversation Id", id)
	log.Debug("Initializing new conversation")
	if err := s.store.Del(ctx, id); err != nil && !s.store.IsNil(err) {
		log.Error("Error initializing conversation", "id", id, "error", err)
	}
	return s.saveTurn(ctx, id, jobModel.JobPayload{})
}

// GetHistory returns the recent turns formatted for the prompt, oldest first.
// The sentinel payload written by InitNewConversation carries no question and
// is skipped.
func (s *RedisConversationStore) GetHistory(ctx context.Context, conversationId string) ([]string, error) {
	log := s.logger.With("conversation Id", conversationId)
	log.Debug("Getting conversation history")

	raw, err := s.store.ListGetRecent(ctx, conversationId, historyTurnLimit+1)
	if err != nil {
		log.Error("Error getting history", "error:", err)
		return nil, err
	}

	turns := make([]string, 0, len(raw))
	for _, entry := range raw {
		var payload jobModel.JobPayload
		if err := json.Unmarshal([]byte(entry), &payload); err != nil || payload.Question == "" {
			continue
		}
		turns = append(turns, formatTurn(payload))
	}
	if len(turns) > historyTurnLimit {
		turns = turns[len(turns)-historyTurnLimit:]
	}
	return turns, nil
}

func formatTurn(payload jobModel.JobPayload) string {
	answerText := ""
	if payload.Answer != nil {
		answerText = payload.Answer.Text
	}
	return fmt.Sprintf("User: %s\nAssistant: %s", payload.Question, answerText)
}

func marshallJson(payload jobModel.JobPayload, logger *logger_i.Logger) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshalling json :", "error", err)
	}
	return data
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
