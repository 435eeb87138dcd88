package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnalyzeSite: `Analyze this website URL and extract key navigation structure, main sections, and important information: %s`,

	driven.PromptChatTurn: `You are a helpful website navigation assistant. You're helping a user navigate and find information on this website: %s

Website context and structure:
%s

Previous conversation:
%s

User's question: %s

Provide clear, helpful guidance. If asking about navigation, give specific step-by-step instructions. If they ask in a different language, respond in that language. Be friendly and helpful. Use markdown formatting for better readability.`,

	driven.PromptPageAsk: `Website URL: %s

Website Content:
%s

User Question:
%s`,

	driven.PromptPageAskSystem: `You are a helpful website navigation assistant.`,

	driven.PromptConcierge: `You are the official assistant for the website described below.

Use ONLY the context below to answer. If navigation is needed, provide steps.

CONTEXT:
%s

USER QUESTION:
%s

Answer in a short paragraph. Put navigation steps, in order, in the steps list.`,

	driven.PromptSiteContext: ``,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.sitenav/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".sitenav", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
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

	content := `# sitenav Prompts

This directory contains customisable prompts used by sitenav's LLM calls.

## Files

- ` + "`analyze_site.txt`" + ` - Structured analysis of a website (one %s: the URL)
- ` + "`chat_turn.txt`" + ` - Answers a question inside a conversation
  (four %s: URL, stored analysis, recent messages, question)
- ` + "`page_ask.txt`" + ` - Answers a question about page text
  (three %s: URL, page text, question)
- ` + "`page_ask_system.txt`" + ` - System instruction for page questions (no placeholders)
- ` + "`concierge.txt`" + ` - Site concierge answer (two %s: site context, question)
- ` + "`site_context.txt`" + ` - Plain description of the site the concierge serves.
  Leave empty to disable ` + "`POST /chat`" + `.

## Customisation

Edit any file to customise LLM behaviour. A running ` + "`sitenav serve`" + `
picks up changes immediately; other commands read them on the next run.

## Format Placeholders

Prompts use Go fmt placeholders (` + "`%s`" + `). Keep the same number of
placeholders in the same order, or the rendered prompt will be malformed.
`
	return os.WriteFile(path, []byte(content), 0600)
}
