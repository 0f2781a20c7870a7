package driven

// PromptStore provides access to LLM prompt templates.
// Templates are user-editable; implementations fall back to built-in
// defaults when a template is missing.
type PromptStore interface {
	// Load returns the template for name.
	Load(name string) (string, error)
}

// Prompt names.
const (
	// PromptAnswerSystem is the system prompt for answer synthesis.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the retrieved context and the question.
	// It takes two %s placeholders: context, then question.
	PromptAnswerUser = "answer_user"
)
