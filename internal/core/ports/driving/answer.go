package driving

import "context"

// AnswerService grounds an LLM answer in retrieved chunks.
type AnswerService interface {
	// Answer retrieves context for question and asks the LLM to answer it.
	// Semantic retrieval failures are returned as the answer text.
	Answer(ctx context.Context, partition, question, subject string) (string, error)
}
