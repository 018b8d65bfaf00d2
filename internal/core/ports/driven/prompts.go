package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the embedded default
	// or an error, depending on whether the prompt is known.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by the answer generator.
const (
	// PromptAnswerSystem instructs the model to answer strictly from book context.
	// No format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser frames the context and question.
	// Expects %s (context), %s (question) and %s (citations block) placeholders.
	PromptAnswerUser = "answer_user"

	// PromptNoContextSystem tells the model no relevant passage was found.
	// No format placeholders.
	PromptNoContextSystem = "no_context_system"

	// PromptNoContextUser restates the question.
	// Expects a %s placeholder for the question.
	PromptNoContextUser = "no_context_user"

	// PromptEvaluationSystem sets up the answer evaluator.
	// No format placeholders.
	PromptEvaluationSystem = "answer_evaluation_system"

	// PromptEvaluation asks for a JSON verdict on an answer.
	// Expects %s (question), %s (context) and %s (answer) placeholders.
	PromptEvaluation = "answer_evaluation"
)

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	PromptAnswerSystem: `You are an AI assistant helping users understand book content. Answer questions based on the provided context. If the context doesn't contain the information needed to answer, clearly state that the information is not in the provided context. Always provide specific citations when possible.`,

	PromptAnswerUser: `Context:
%s

Question: %s

Please provide a comprehensive answer to the question based on the context provided above. Ensure your answer is accurate, helpful, and directly addresses the question. If specific citations are provided, reference them appropriately in your answer. %s
Keep your response focused and well-structured.`,

	PromptNoContextSystem: `You are an AI assistant. The user asked a question, but no relevant context was found in the provided book content. Politely explain that the information is not available in the current book, and suggest they try rephrasing their question or consult other sources. Do not make up information or hallucinate.`,

	PromptNoContextUser: `The user asked: '%s'

No relevant information was found in the book content to answer this question.`,

	PromptEvaluationSystem: `You are an AI evaluator. Analyze the provided answer to determine its quality, grounding in the context, and relevance to the question. Respond with a JSON object as specified in the user's request.`,

	PromptEvaluation: `Question: %s

Context: %s

Answer: %s

Analyze the answer and determine if it is properly grounded in the provided context. Check if the answer contains information not present in the context (hallucinations). Also check if the answer directly addresses the question. Respond with a JSON object containing:
- 'is_grounded': true if the answer is properly grounded in the context, false otherwise
- 'has_hallucinations': true if the answer contains information not in the context, false otherwise
- 'addresses_question': true if the answer addresses the question, false otherwise
- 'confidence_score': a float between 0 and 1 indicating confidence in the answer quality`,
}

// DefaultPrompt returns the built-in template for a well-known prompt name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptNames returns the well-known prompt names.
func PromptNames() []string {
	return []string{
		PromptAnswerSystem,
		PromptAnswerUser,
		PromptNoContextSystem,
		PromptNoContextUser,
		PromptEvaluationSystem,
		PromptEvaluation,
	}
}
