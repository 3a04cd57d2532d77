package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// placeholderPattern matches {{name}} placeholders in templates.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// PromptEngine resolves a locale and logical template name to a filled
// prompt string. Locale fallback is an explicit ordered chain (requested,
// then default), not exception-driven control flow.
type PromptEngine struct {
	store         driven.PromptStore
	defaultLocale string
}

// NewPromptEngine creates a prompt engine over the given template store.
func NewPromptEngine(store driven.PromptStore, defaultLocale string) *PromptEngine {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &PromptEngine{store: store, defaultLocale: defaultLocale}
}

// Render loads the template for the locale (falling back to the default
// locale) and substitutes the given variables. A placeholder with no
// supplied value is domain.ErrInvalidConfiguration, never a silent blank.
// A template missing in both locales is domain.ErrTemplateNotFound.
func (e *PromptEngine) Render(locale, name string, vars map[string]string) (string, error) {
	tmpl, err := e.load(locale, name)
	if err != nil {
		return "", err
	}

	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		val, ok := vars[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return val
	})
	if missing != "" {
		return "", fmt.Errorf("%w: template %q references undeclared variable %q",
			domain.ErrInvalidConfiguration, name, missing)
	}
	return out, nil
}

// BuildAnswerPrompt assembles the RAG prompt: the system instruction, the
// retrieved chunks each labelled with its retrieval rank, and the user's
// question, in that fixed order. The ordering is a contract because the
// generation provider is sensitive to message order. An empty chunk list
// still renders; the model may then answer from its own knowledge.
func (e *PromptEngine) BuildAnswerPrompt(locale, question string, chunks []domain.RetrievedChunk) (domain.Prompt, error) {
	system, err := e.Render(locale, driven.PromptRAGSystem, nil)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	for i, c := range chunks {
		doc, err := e.Render(locale, driven.PromptRAGDocument, map[string]string{
			"rank": fmt.Sprintf("%d", i+1),
			"text": c.Text,
		})
		if err != nil {
			return nil, err
		}
		body.WriteString(doc)
		body.WriteString("\n\n")
	}

	footer, err := e.Render(locale, driven.PromptRAGFooter, map[string]string{
		"question": question,
	})
	if err != nil {
		return nil, err
	}
	body.WriteString(footer)

	return domain.Prompt{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: body.String()},
	}, nil
}

// load walks the locale fallback chain.
func (e *PromptEngine) load(locale, name string) (string, error) {
	chain := []string{locale, e.defaultLocale}
	if locale == "" || locale == e.defaultLocale {
		chain = []string{e.defaultLocale}
	}

	var lastErr error
	for _, loc := range chain {
		tmpl, err := e.store.Load(loc, name)
		if err == nil {
			return tmpl, nil
		}
		if !errors.Is(err, domain.ErrTemplateNotFound) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("template %q missing in %q and default %q: %w",
		name, locale, e.defaultLocale, lastErr)
}
