package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driven"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const answerSystemPrompt = "You are a Dofus guide. Answer using only the provided context. " +
	"If the context does not contain the answer, say so."

const answerUserTemplate = "Context:\n%s\n\nQuestion: %s"

// AnswerService synthesises an answer from retrieved chunks.
type AnswerService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
}

// NewAnswerService creates a new answer service. llm may be nil, in which
// case Answer returns domain.ErrLLMUnavailable.
func NewAnswerService(retrieval driving.RetrievalService, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		retrieval: retrieval,
		llm:       llm,
	}
}

// SetPromptStore installs user-editable prompts. A nil store, or a failed
// load, uses the built-in prompts.
func (s *AnswerService) SetPromptStore(prompts driven.PromptStore) {
	s.prompts = prompts
}

func (s *AnswerService) prompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	p, err := s.prompts.Load(name)
	if err != nil || p == "" {
		logger.Warn("Prompt %q unavailable, using built-in: %v", name, err)
		return fallback
	}
	return p
}

// Answer retrieves context and asks the LLM. A retrieval sentinel is
// returned as-is without calling the LLM.
func (s *AnswerService) Answer(ctx context.Context, partition, question, subject string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("answer: %w", domain.ErrLLMUnavailable)
	}

	result, err := s.retrieval.Retrieve(ctx, partition, question, subject)
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}
	if result.IsErr() {
		return result.Message(), nil
	}

	contextText := JoinChunkTexts(result.Chunks())
	logger.Debug("Answer context: %d chunks, %d bytes", len(result.Chunks()), len(contextText))

	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: s.prompt(driven.PromptAnswerSystem, answerSystemPrompt)},
		{Role: "user", Content: fmt.Sprintf(s.prompt(driven.PromptAnswerUser, answerUserTemplate), contextText, question)},
	}, driven.ChatOptions{Temperature: 0.2})
	if err != nil {
		return "", fmt.Errorf("answer: %s: %w", s.llm.ModelName(), err)
	}
	return strings.TrimSpace(reply), nil
}

// JoinChunkTexts concatenates chunk texts separated by blank lines.
func JoinChunkTexts(chunks []domain.ScoredChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}
