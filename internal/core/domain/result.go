package domain

import (
	"fmt"
	"strings"
)

// FailureKind classifies a semantic retrieval failure.
type FailureKind string

// Failure kinds reported in-band to the caller.
const (
	// FailureInvalidPartition means the content type is not in the partition table.
	FailureInvalidPartition FailureKind = "invalid_partition"

	// FailureSubjectUnresolved means no catalog title reached the confidence floor.
	FailureSubjectUnresolved FailureKind = "subject_unresolved"
)

// Failure is a semantic retrieval failure carrying a human-readable message.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Result is the outcome of a retrieval: either ranked chunks or a failure.
// Exactly one of the two is set.
type Result struct {
	chunks  []ScoredChunk
	failure *Failure
}

// OK wraps a ranked chunk list. A nil list is normalised to empty.
func OK(chunks []ScoredChunk) Result {
	if chunks == nil {
		chunks = []ScoredChunk{}
	}
	return Result{chunks: chunks}
}

// Failed wraps a semantic failure.
func Failed(kind FailureKind, message string) Result {
	return Result{failure: &Failure{Kind: kind, Message: message}}
}

// InvalidPartition builds the failure for an unknown content type.
func InvalidPartition(name string) Result {
	return Failed(FailureInvalidPartition, fmt.Sprintf(
		"Unknown content type %q. Valid types are: %s.",
		name, strings.Join(PartitionNames(), ", ")))
}

// SubjectUnresolved builds the failure for a subject that matched no catalog title.
func SubjectUnresolved(p Partition, subject string) Result {
	kind := p.EntityKind()
	return Failed(FailureSubjectUnresolved, fmt.Sprintf(
		"No %s named %q was found. Check the %s name and try again.",
		kind, subject, kind))
}

// IsErr returns true if the result carries a failure.
func (r Result) IsErr() bool {
	return r.failure != nil
}

// Chunks returns the ranked chunks. It is empty for failures.
func (r Result) Chunks() []ScoredChunk {
	return r.chunks
}

// Failure returns the failure, or nil on success.
func (r Result) Failure() *Failure {
	return r.failure
}

// Message returns the failure message, or "" on success.
func (r Result) Message() string {
	if r.failure == nil {
		return ""
	}
	return r.failure.Message
}

// ToolDocument is the flat document shape handed to the tool-calling layer.
type ToolDocument struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

// Documents flattens the result for the tool boundary.
// A failure becomes a single sentinel document flagged with error=true.
func (r Result) Documents() []ToolDocument {
	if r.failure != nil {
		return []ToolDocument{{
			PageContent: r.failure.Message,
			Metadata: map[string]any{
				MetaError: true,
				"kind":    string(r.failure.Kind),
			},
		}}
	}

	docs := make([]ToolDocument, 0, len(r.chunks))
	for _, sc := range r.chunks {
		meta := make(map[string]any, len(sc.Chunk.Metadata)+4)
		for k, v := range sc.Chunk.Metadata {
			meta[k] = v
		}
		meta["id"] = sc.Chunk.ID
		meta[MetaTitle] = sc.Chunk.Title
		meta[MetaSource] = sc.Chunk.Origin
		meta["score"] = sc.Score
		docs = append(docs, ToolDocument{
			PageContent: sc.Chunk.Text,
			Metadata:    meta,
		})
	}
	return docs
}

// Resolution is the outcome of matching a subject name against a title catalog.
type Resolution struct {
	// Subject is the name supplied by the caller.
	Subject string

	// Title is the best canonical title, set only when Matched.
	Title string

	// Score is the best similarity ratio seen, 0 to 100.
	Score int

	// Matched is true if Score reached the confidence floor.
	Matched bool
}
