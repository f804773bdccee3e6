package qdrantDB

import (
	"testing"

	"github.com/google/uuid"
)

func TestPointUUID(t *testing.T) {
	// external document ids like "policy-2024-17" are not UUIDs, but the
	// point id sent to qdrant always has to be one
	tests := []string{
		"policy-2024-17",
		"doc-1",
		"c3f9b0e2-5b6a-4f1e-9a2b-8d4c1e7f6a50",
		"दस्तावेज़-१",
	}
	for _, externalId := range tests {
		got := pointUUID(externalId)
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("pointUUID(%q) = %q is not a valid UUID: %v", externalId, got, err)
		}
		if again := pointUUID(externalId); again != got {
			t.Errorf("pointUUID(%q) is not stable: %q vs %q", externalId, got, again)
		}
	}

	if pointUUID("doc-1") == pointUUID("doc-2") {
		t.Error("distinct external ids must map to distinct point ids")
	}
}
