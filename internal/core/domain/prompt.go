package domain

import "strings"

// Prompt message roles. The generation provider is sensitive to message
// order, so prompts are always ordered slices, never maps.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PromptMessage is a single role-tagged message in a prompt.
type PromptMessage struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Prompt is an ordered sequence of messages passed once to the generation
// provider. Ephemeral: constructed per answer request.
type Prompt []PromptMessage

// String flattens the prompt for traceability output.
func (p Prompt) String() string {
	var b strings.Builder
	for i, m := range p {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// Answer is a generated reply plus the prompt and retrieved chunks that
// produced it, surfaced for debuggability and evaluation.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Prompt is the full prompt that was sent, flattened.
	Prompt string `json:"prompt_used"`

	// Chunks are the retrieved chunks in rank order.
	Chunks []RetrievedChunk `json:"retrieved_chunks"`
}
