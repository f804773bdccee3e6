package policyModel

import (
	"time"
)

type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangMarathi Language = "mr"
)

type SectionLabel string

const (
	SectionCoverage  SectionLabel = "coverage"
	SectionExclusion SectionLabel = "exclusions"
	SectionClaims    SectionLabel = "claims"
	SectionPremium   SectionLabel = "premium"
	SectionGeneral   SectionLabel = "general"
)

// Document is an uploaded policy. It is owned by the ingestion collaborator
// and immutable once indexed; a re-upload replaces it wholesale.
type Document struct {
	Id         string    `json:"document_id"`
	Language   Language  `json:"language"`
	Summary    string    `json:"summary,omitempty"`
	Chunks     []Chunk   `json:"chunks,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is a contiguous span of normalized policy text, the unit of retrieval.
// Vector stays nil until the chunk has been through the embedding index.
type Chunk struct {
	Id          string       `json:"chunk_id"`
	DocId       string       `json:"document_id"`
	Section     SectionLabel `json:"section"`
	Text        string       `json:"text"`
	StartOffset int          `json:"start_offset"`
	EndOffset   int          `json:"end_offset"`
	Language    Language     `json:"language"`
	Vector      []float32    `json:"-"`
}

type Query struct {
	Text           string   `json:"text"`
	Language       Language `json:"language"`
	TargetLanguage Language `json:"target_language"`
	ConversationId string   `json:"conversation_id,omitempty"`
	History        []string `json:"-"`
}

type Granularity string

const (
	GranularityDocument Granularity = "document"
	GranularitySection  Granularity = "section"
	GranularityPassage  Granularity = "passage"
)

type ScoredChunk struct {
	Chunk       Chunk
	Score       float64
	Granularity Granularity
}

// RetrievalResult is a ranked candidate context. Scores are non-increasing
// by rank; ordering between equal scores is deterministic (newer document
// first, then lower start offset).
type RetrievalResult struct {
	Matches []ScoredChunk
}

func (r RetrievalResult) TopScore() float64 {
	if len(r.Matches) == 0 {
		return 0
	}
	return r.Matches[0].Score
}

type VerificationStatus string

const (
	VerificationUnverified   VerificationStatus = "unverified"
	VerificationVerified     VerificationStatus = "verified"
	VerificationContradicted VerificationStatus = "contradicted"
	VerificationInconclusive VerificationStatus = "inconclusive"
)

type Citation struct {
	ChunkId string       `json:"chunk_id"`
	DocId   string       `json:"document_id"`
	Section SectionLabel `json:"section"`
}

type Answer struct {
	Text           string             `json:"text"`
	Language       Language           `json:"language"`
	Confidence     float64            `json:"confidence"`
	Citations      []Citation         `json:"citations"`
	Verification   VerificationStatus `json:"verification_status"`
	Claims         []Claim            `json:"claims,omitempty"`
	LookupDegraded bool               `json:"lookup_degraded,omitempty"`
	Disclaimed     bool               `json:"disclaimed,omitempty"`
	FollowUps      []string           `json:"suggested_questions,omitempty"`
}

type ClaimOutcome string

const (
	ClaimSupported    ClaimOutcome = "supported"
	ClaimContradicted ClaimOutcome = "contradicted"
	ClaimInconclusive ClaimOutcome = "inconclusive"
)

// Claim is an atomic factual assertion extracted from an Answer, checkable
// on its own against an authoritative source.
type Claim struct {
	Text         string       `json:"text"`
	Heuristic    string       `json:"heuristic,omitempty"`
	Citations    []Citation   `json:"citations,omitempty"`
	Outcome      ClaimOutcome `json:"outcome"`
	EvidenceRefs []string     `json:"evidence_refs,omitempty"`
}

// LookupResult is what the external fact-lookup collaborator returns.
type LookupResult struct {
	Outcome      ClaimOutcome `json:"outcome"`
	EvidenceRefs []string     `json:"evidence_refs,omitempty"`
}

// AuditRecord is handed to the compliance collaborator for retention handling.
type AuditRecord struct {
	QueryId      string             `json:"query_id"`
	Timestamp    time.Time          `json:"timestamp"`
	Question     string             `json:"question"`
	AnswerText   string             `json:"answer"`
	Confidence   float64            `json:"confidence"`
	Verification VerificationStatus `json:"verification_status"`
}
