package policyModel

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoMatch means the coarse retrieval pass found nothing above threshold.
// Callers surface it as "insufficient information"; they must not substitute
// unrelated context for it.
var ErrNoMatch = errors.New("no document matched above relevance threshold")

// ErrVerificationUnavailable means the external fact-lookup capability could
// not be reached. It downgrades the answer to inconclusive, never fails it.
var ErrVerificationUnavailable = errors.New("fact lookup capability unavailable")

// InvalidVectorError is returned when an embedding does not match the
// configured dimensionality. Such input is rejected, not retried.
type InvalidVectorError struct {
	Got  int
	Want int
}

func (e *InvalidVectorError) Error() string {
	return fmt.Sprintf("invalid vector: got dimension %d, index expects %d", e.Got, e.Want)
}

// GenerationTimeoutError is retryable with a smaller context.
type GenerationTimeoutError struct {
	Deadline time.Duration
}

func (e *GenerationTimeoutError) Error() string {
	return fmt.Sprintf("generation exceeded deadline of %s", e.Deadline)
}

func ValidateChunks(docId string, chunks []Chunk) error {
	prevEnd := -1
	for i, c := range chunks {
		if c.DocId != docId {
			return fmt.Errorf("chunk %d belongs to document %q, expected %q", i, c.DocId, docId)
		}
		if c.Text == "" {
			return fmt.Errorf("chunk %d is empty", i)
		}
		if c.StartOffset < 0 || c.EndOffset <= c.StartOffset {
			return fmt.Errorf("chunk %d has malformed offsets [%d,%d)", i, c.StartOffset, c.EndOffset)
		}
		// offsets must be disjoint and monotonic within a document
		if c.StartOffset <= prevEnd {
			return fmt.Errorf("chunk %d overlaps or precedes its predecessor (start %d, previous end %d)", i, c.StartOffset, prevEnd)
		}
		prevEnd = c.EndOffset - 1
	}
	return nil
}
