package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMRateLimit      = "llm.rate_limit"
	keyLLMBurst          = "llm.burst"
	keyChatTimeout       = "chat.gateway_timeout"
	keyChatHistoryWindow = "chat.history_window"
	keyWebFetchEnabled   = "web.fetch_enabled"
	keyWebMaxPageChars   = "web.max_page_chars"
	keyWebUserAgent      = "web.user_agent"
	keyServerAddr        = "server.addr"
	keyServerCORSOrigins = "server.cors_origins"
	keyAuthTokenTTL      = "auth.token_ttl"
	keyStorageBackend    = "storage.backend"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerSecond: s.getFloat(keyLLMRateLimit, defaults.LLM.RequestsPerSecond),
			Burst:             s.getInt(keyLLMBurst, defaults.LLM.Burst),
		},
		Chat: domain.ChatSettings{
			GatewayTimeout: s.getDuration(keyChatTimeout, defaults.Chat.GatewayTimeout),
			HistoryWindow:  s.getInt(keyChatHistoryWindow, defaults.Chat.HistoryWindow),
		},
		Web: domain.WebSettings{
			FetchEnabled: s.getBool(keyWebFetchEnabled, defaults.Web.FetchEnabled),
			MaxPageChars: s.getInt(keyWebMaxPageChars, defaults.Web.MaxPageChars),
			UserAgent:    s.getString(keyWebUserAgent, defaults.Web.UserAgent),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, defaults.Server.Addr),
			CORSOrigins: s.configStore.GetStringSlice(keyServerCORSOrigins),
		},
		Auth: domain.AuthSettings{
			TokenTTL: s.getDuration(keyAuthTokenTTL, defaults.Auth.TokenTTL),
		},
		Storage: s.getStorageBackend(defaults.Storage),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMRateLimit, settings.LLM.RequestsPerSecond); err != nil {
		return fmt.Errorf("save llm rate_limit: %w", err)
	}
	if err := s.configStore.Set(keyLLMBurst, settings.LLM.Burst); err != nil {
		return fmt.Errorf("save llm burst: %w", err)
	}

	// Save chat settings
	if err := s.configStore.Set(keyChatTimeout, settings.Chat.GatewayTimeout.String()); err != nil {
		return fmt.Errorf("save chat gateway_timeout: %w", err)
	}
	if err := s.configStore.Set(keyChatHistoryWindow, settings.Chat.HistoryWindow); err != nil {
		return fmt.Errorf("save chat history_window: %w", err)
	}

	// Save web settings
	if err := s.configStore.Set(keyWebFetchEnabled, settings.Web.FetchEnabled); err != nil {
		return fmt.Errorf("save web fetch_enabled: %w", err)
	}
	if err := s.configStore.Set(keyWebMaxPageChars, settings.Web.MaxPageChars); err != nil {
		return fmt.Errorf("save web max_page_chars: %w", err)
	}
	if err := s.configStore.Set(keyWebUserAgent, settings.Web.UserAgent); err != nil {
		return fmt.Errorf("save web user_agent: %w", err)
	}

	// Save server settings
	if err := s.configStore.Set(keyServerAddr, settings.Server.Addr); err != nil {
		return fmt.Errorf("save server addr: %w", err)
	}
	if len(settings.Server.CORSOrigins) > 0 {
		if err := s.configStore.Set(keyServerCORSOrigins, settings.Server.CORSOrigins); err != nil {
			return fmt.Errorf("save server cors_origins: %w", err)
		}
	}

	if err := s.configStore.Set(keyAuthTokenTTL, settings.Auth.TokenTTL.String()); err != nil {
		return fmt.Errorf("save auth token_ttl: %w", err)
	}
	if err := s.configStore.Set(keyStorageBackend, string(settings.Storage)); err != nil {
		return fmt.Errorf("save storage backend: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetGatewayTimeout changes the per-call LLM deadline.
func (s *SettingsService) SetGatewayTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: gateway timeout must be positive, got %s", domain.ErrInvalidInput, timeout)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Chat.GatewayTimeout = timeout

	return s.Save(settings)
}

// Validate checks that the LLM is configured and the chat settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider is not configured", domain.ErrLLMUnavailable)
	}
	if settings.Chat.GatewayTimeout <= 0 {
		return fmt.Errorf("invalid gateway timeout: %s", settings.Chat.GatewayTimeout)
	}
	if settings.Chat.HistoryWindow <= 0 {
		return fmt.Errorf("invalid history window: %d", settings.Chat.HistoryWindow)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStorageBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
