package store

import (
	"context"
	"sync"

	"github.com/nitivista/policyqa/internal/domain/jobModel"
)

type InMemoryConversationStore struct {
	conversationLock *sync.RWMutex
	conversationMap  map[string][]jobModel.JobPayload
}

func InitConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		conversationLock: new(sync.RWMutex),
		conversationMap:  make(map[string][]jobModel.JobPayload),
	}
}

func (store *InMemoryConversationStore) ValidateConversationId(ctx context.Context, conversationId string) bool {
	store.conversationLock.RLock()
	defer store.conversationLock.RUnlock()
	_, ok := store.conversationMap[conversationId]
	return ok
}

func (store *InMemoryConversationStore) saveTurn(id string, payload jobModel.JobPayload) {
	store.conversationLock.Lock()
	defer store.conversationLock.Unlock()
	store.conversationMap[id] = append(store.conversationMap[id], payload)
}

func (store *InMemoryConversationStore) TrySaveTurn(ctx context.Context, id string, payload jobModel.JobPayload) error {
	if !store.ValidateConversationId(ctx, id) {
		return nil
	}
	store.saveTurn(id, payload)
	return nil
}

func (store *InMemoryConversationStore) InitNewConversation(ctx context.Context, id string) error {
	store.conversationLock.Lock()
	defer store.conversationLock.Unlock()
	store.conversationMap[id] = make([]jobModel.JobPayload, 0)
	return nil
}

func (store *InMemoryConversationStore) GetHistory(ctx context.Context, conversationId string) ([]string, error) {
	store.conversationLock.RLock()
	defer store.conversationLock.RUnlock()

	payloads := store.conversationMap[conversationId]
	if len(payloads) > historyTurnLimit {
		payloads = payloads[len(payloads)-historyTurnLimit:]
	}
	turns := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if p.Question == "" {
			continue
		}
		turns = append(turns, formatTurn(p))
	}
	return turns, nil
}
