package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsJSONSchema returns true if the provider can constrain output to a schema natively.
// Other providers are instructed through the prompt instead.
func (p AIProvider) SupportsJSONSchema() bool {
	return p == AIProviderOpenAI || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond is the sustained rate of gateway calls.
	RequestsPerSecond float64

	// Burst is the number of calls allowed above the sustained rate.
	Burst int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChatSettings controls the turn orchestrator.
type ChatSettings struct {
	// GatewayTimeout bounds a single LLM call made by a flow.
	GatewayTimeout time.Duration

	// HistoryWindow is how many trailing messages are rendered into the turn prompt.
	HistoryWindow int
}

// WebSettings controls live page fetching for internet context.
type WebSettings struct {
	// FetchEnabled turns on page fetching for requests that ask for internet context.
	FetchEnabled bool

	// MaxPageChars truncates fetched or submitted page text.
	MaxPageChars int

	// UserAgent is sent with page fetches.
	UserAgent string
}

// ServerSettings controls the REST facade.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string
}

// AuthSettings controls session tokens.
type AuthSettings struct {
	// TokenTTL is the lifetime of an issued session token.
	TokenTTL time.Duration
}

// StorageBackend selects the conversation store implementation.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM     LLMSettings
	Chat    ChatSettings
	Web     WebSettings
	Server  ServerSettings
	Auth    AuthSettings
	Storage StorageBackend
}

// Defaults for settings that have one.
const (
	DefaultGatewayTimeout    = 60 * time.Second
	DefaultHistoryWindow     = 6
	DefaultMaxPageChars      = 8000
	DefaultUserAgent         = "sitenav/1.0 (+https://github.com/custodia-labs/sitenav)"
	DefaultServerAddr        = "127.0.0.1:8080"
	DefaultTokenTTL          = 7 * 24 * time.Hour
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 4
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured by default.
// Users must explicitly configure it via settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Chat: ChatSettings{
			GatewayTimeout: DefaultGatewayTimeout,
			HistoryWindow:  DefaultHistoryWindow,
		},
		Web: WebSettings{
			FetchEnabled: true,
			MaxPageChars: DefaultMaxPageChars,
			UserAgent:    DefaultUserAgent,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
		Auth: AuthSettings{
			TokenTTL: DefaultTokenTTL,
		},
		Storage: StorageSQLite,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
