package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads locale-scoped prompt templates from user-editable files
// on disk, with embedded defaults as fallback. Templates live at
// <dir>/<locale>/<name>.txt.
//
// The store uses lazy initialisation: files are only created when first
// accessed, not in the constructor. This makes testing easier and avoids
// unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string // key: locale + "/" + name
	initOnce  sync.Once
	initErr   error
	watcher   *fsnotify.Watcher
}

// defaultTemplates contains the embedded templates per locale. These seed
// the prompt directory on first access and back any file the user deletes.
//
//nolint:lll // Template content is intentionally long and should not be wrapped.
var defaultTemplates = map[string]map[string]string{
	"en": {
		driven.PromptRAGSystem: `You are an assistant that answers questions using the supplied documents.
Ground every claim in the documents when they are relevant.
If the documents do not contain the answer, say so or answer from general knowledge, and make the distinction clear.
Answer in the same language as the question. Be concise and do not fabricate citations.`,

		driven.PromptRAGDocument: `## Document No: {{rank}}
### Content: {{text}}`,

		driven.PromptRAGFooter: `Based only on the documents above, answer the question.

## Question:
{{question}}

## Answer:`,
	},
	"ar": {
		driven.PromptRAGSystem: `أنت مساعد يجيب عن الأسئلة اعتمادًا على المستندات المرفقة.
استند في إجابتك إلى المستندات متى كانت ذات صلة.
إذا لم تتضمن المستندات الإجابة فوضّح ذلك. أجب بلغة السؤال وكن موجزًا.`,

		driven.PromptRAGDocument: `## المستند رقم: {{rank}}
### المحتوى: {{text}}`,

		driven.PromptRAGFooter: `اعتمادًا على المستندات أعلاه فقط، أجب عن السؤال التالي.

## السؤال:
{{question}}

## الإجابة:`,
	},
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.ragline/prompts/.
//
// The constructor performs no I/O; directory creation and default file
// writes happen lazily on first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".ragline", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template body for the given locale and name.
// On first call, initialises the prompt directory with the embedded
// defaults. A template absent from both disk and the embedded defaults for
// this locale is domain.ErrTemplateNotFound.
func (s *PromptStore) Load(locale, name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed.
		if tmpl, ok := defaultTemplates[locale][name]; ok {
			return tmpl, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	key := locale + "/" + name

	s.mu.RLock()
	if tmpl, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return tmpl, nil
	}
	s.mu.RUnlock()

	tmpl, err := s.loadFromFile(locale, name)
	if err != nil {
		if tmpl, ok := defaultTemplates[locale][name]; ok {
			return tmpl, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s/%s", domain.ErrTemplateNotFound, locale, name)
		}
		return "", fmt.Errorf("load template %s/%s: %w", locale, name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		// Another goroutine loaded it first, use their value.
		tmpl = cached
	} else {
		s.cache[key] = tmpl
	}
	s.mu.Unlock()

	return tmpl, nil
}

// Reload clears the template cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch starts watching the prompt directory and reloads the cache whenever
// a template file changes on disk. Stops when Close is called.
func (s *PromptStore) Watch() error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.promptDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	for locale := range defaultTemplates {
		if err := watcher.Add(filepath.Join(s.promptDir, locale)); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", locale, err)
		}
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					logger.Debug("Prompt template changed: %s", event.Name)
					s.Reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Prompt watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the directory watcher, if started.
func (s *PromptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

// initialise creates the prompt directory tree and default files.
// Called once via sync.Once on first Load.
func (s *PromptStore) initialise() {
	for locale, templates := range defaultTemplates {
		dir := filepath.Join(s.promptDir, locale)
		if err := os.MkdirAll(dir, 0700); err != nil {
			s.initErr = fmt.Errorf("create prompt directory: %w", err)
			return
		}
		for name, content := range templates {
			path := filepath.Join(dir, name+".txt")
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := os.WriteFile(path, []byte(content), 0600); err != nil {
					s.initErr = fmt.Errorf("create default template %s/%s: %w", locale, name, err)
					return
				}
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a template from disk.
func (s *PromptStore) loadFromFile(locale, name string) (string, error) {
	path := filepath.Join(s.promptDir, locale, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Ragline Prompts

This directory contains the prompt templates used to assemble answers, one
subdirectory per locale.

## Files

- ` + "`<locale>/rag_system.txt`" + ` - System instruction for grounded answering
- ` + "`<locale>/rag_document.txt`" + ` - Renders one retrieved chunk ({{rank}}, {{text}})
- ` + "`<locale>/rag_footer.txt`" + ` - Closes the prompt with the question ({{question}})

## Customisation

Edit any file to customise answer behaviour. Changes take effect on the next
command. Placeholders use ` + "`{{name}}`" + ` syntax; every placeholder a template
references must be supplied by the pipeline, so keep them in place.
`
	return os.WriteFile(path, []byte(content), 0600)
}
