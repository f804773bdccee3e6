package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nitivista/policyqa/internal/data/redisStore"
	"github.com/nitivista/policyqa/internal/data/store"
	"github.com/nitivista/policyqa/internal/domain/jobModel"
	"github.com/nitivista/policyqa/internal/domain/policyModel"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, redisStore.NewTestStore(client)
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newTestStore(t)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.Background()
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			Question: "Is cataract surgery covered?",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.Question != testJob.JobPayload.Question {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.Question, testJob.JobPayload.Question)
		}
	})

	t.Run("Answer survives the roundtrip", func(t *testing.T) {
		withAnswer := testJob
		withAnswer.JobPayload.Answer = &policyModel.Answer{
			Text:         "Cataract surgery is covered after 24 months.",
			Confidence:   0.82,
			Verification: policyModel.VerificationVerified,
		}
		if err := jobStore.SaveJob(ctx, withAnswer); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		retrieved, found := jobStore.GetJob(ctx, jobID)
		if !found || retrieved.JobPayload.Answer == nil {
			t.Fatal("answer payload lost in the roundtrip")
		}
		if retrieved.JobPayload.Answer.Verification != policyModel.VerificationVerified {
			t.Errorf("verification status lost: %+v", retrieved.JobPayload.Answer)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	_, internalStore := newTestStore(t)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.Background()
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

func TestRedisConversationStore_Turns(t *testing.T) {
	_, internalStore := newTestStore(t)
	conversationStore := store.TestConversationStore(internalStore)

	ctx := context.Background()
	conversationId := "conv-1"

	if conversationStore.ValidateConversationId(ctx, conversationId) {
		t.Fatal("conversation must not exist before init")
	}
	if err := conversationStore.InitNewConversation(ctx, conversationId); err != nil {
		t.Fatalf("InitNewConversation failed: %v", err)
	}
	if !conversationStore.ValidateConversationId(ctx, conversationId) {
		t.Fatal("conversation missing after init")
	}

	turn := jobModel.JobPayload{
		Question: "What is the waiting period?",
		Answer:   &policyModel.Answer{Text: "48 months for pre-existing diseases."},
	}
	if err := conversationStore.TrySaveTurn(ctx, conversationId, turn); err != nil {
		t.Fatalf("TrySaveTurn failed: %v", err)
	}

	history, err := conversationStore.GetHistory(ctx, conversationId)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 formatted turn (init sentinel skipped), got %d: %v", len(history), history)
	}
	if !strings.Contains(history[0], "waiting period") || !strings.Contains(history[0], "48 months") {
		t.Errorf("turn not formatted with question and answer: %q", history[0])
	}

	if err := conversationStore.TrySaveTurn(ctx, "unknown-conv", turn); err == nil {
		t.Error("saving a turn to an unknown conversation must fail")
	}
}
