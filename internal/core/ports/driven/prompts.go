package driven

// PromptStore provides access to locale-scoped prompt templates.
// Implementations may load templates from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the template body for the given locale and name.
	// A template missing in this locale is domain.ErrTemplateNotFound;
	// locale fallback is the caller's concern, not the store's.
	Load(locale, name string) (string, error)

	// Reload clears any cached templates, forcing fresh loads on next
	// access. Useful when templates may have been edited on disk.
	Reload()
}

// Well-known template names used by the answer pipeline. These constants
// define the contract between template consumers and providers.
const (
	// PromptRAGSystem is the system instruction for grounded answering.
	// No placeholders.
	PromptRAGSystem = "rag_system"

	// PromptRAGDocument renders one retrieved chunk. Placeholders:
	// {{rank}} and {{text}}.
	PromptRAGDocument = "rag_document"

	// PromptRAGFooter closes the prompt with the user's question.
	// Placeholder: {{question}}.
	PromptRAGFooter = "rag_footer"
)
