package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnalyzeSite asks for the structured description of a website.
	// The template expects a single %s placeholder for the URL.
	PromptAnalyzeSite = "analyze_site"

	// PromptChatTurn answers a user question inside a conversation.
	// The template expects four %s placeholders, in order: website URL,
	// website content, rendered history, user question.
	PromptChatTurn = "chat_turn"

	// PromptPageAsk answers a one-off question about a page's text.
	// The template expects three %s placeholders: URL, page text, question.
	PromptPageAsk = "page_ask"

	// PromptPageAskSystem is the system instruction for page questions.
	// This prompt has no format placeholders.
	PromptPageAskSystem = "page_ask_system"

	// PromptConcierge answers a visitor question about the configured site.
	// The template expects two %s placeholders: site context, question.
	PromptConcierge = "concierge"

	// PromptSiteContext describes the site the concierge speaks for.
	// This is plain text, not a template. Empty disables the concierge.
	PromptSiteContext = "site_context"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
