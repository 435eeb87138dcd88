package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// Ensure ChatService implements the interfaces.
var (
	_ driving.ChatService     = (*ChatService)(nil)
	_ driven.PromptStoreAware = (*ChatService)(nil)
)

// analysisSchemaName labels the structured extraction for providers that need one.
const analysisSchemaName = "website_analysis"

// ChatOptions tunes the turn orchestrator.
type ChatOptions struct {
	// GatewayTimeout bounds each LLM call. Zero uses domain.DefaultGatewayTimeout.
	GatewayTimeout time.Duration

	// HistoryWindow is how many trailing messages go into a turn prompt.
	// Zero uses domain.DefaultHistoryWindow.
	HistoryWindow int

	// Now overrides the message clock. Nil uses time.Now.
	Now func() time.Time
}

// ChatService runs site analysis and conversation turns.
type ChatService struct {
	store       driven.ConversationStore
	gateway     driven.LLMGateway
	auth        driven.AuthContext
	promptStore driven.PromptStore
	locks       *turnLocks
	timeout     time.Duration
	window      int
	now         func() time.Time
}

// NewChatService creates a chat service.
// auth may be nil, in which case conversations are created anonymously.
func NewChatService(
	store driven.ConversationStore,
	gateway driven.LLMGateway,
	auth driven.AuthContext,
	opts ChatOptions,
) *ChatService {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = domain.DefaultGatewayTimeout
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = domain.DefaultHistoryWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ChatService{
		store:   store,
		gateway: gateway,
		auth:    auth,
		locks:   newTurnLocks(),
		timeout: opts.GatewayTimeout,
		window:  opts.HistoryWindow,
		now:     opts.Now,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Analyze normalises rawURL, analyses the site, and creates a conversation
// seeded with the welcome message.
func (s *ChatService) Analyze(ctx context.Context, rawURL string) (*domain.Conversation, error) {
	websiteURL, err := domain.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	logger.Section("Analyze")
	logger.Info("Analyzing %s", websiteURL)

	// 1. Structured extraction
	analysis, err := s.analyze(ctx, websiteURL)
	if err != nil {
		return nil, &domain.AnalysisFailedError{URL: websiteURL, Err: err}
	}
	content, err := analysis.Encode()
	if err != nil {
		return nil, &domain.AnalysisFailedError{URL: websiteURL, Err: err}
	}

	// 2. Welcome message and create
	conv := domain.Conversation{
		Title:          analysis.TitleOr(domain.Hostname(websiteURL)),
		WebsiteURL:     websiteURL,
		WebsiteContent: content,
		Messages: []domain.Message{
			domain.NewMessage(domain.RoleAssistant, analysis.WelcomeMessage(websiteURL), s.now()),
		},
		Status:    domain.StatusActive,
		CreatedBy: s.currentEmail(ctx),
	}

	created, err := s.store.Create(ctx, conv)
	if err != nil {
		return nil, &domain.AnalysisFailedError{URL: websiteURL, Err: fmt.Errorf("create conversation: %w", err)}
	}

	logger.Info("Created conversation %s (%q)", created.ID, created.Title)
	return created, nil
}

// SendMessage appends the user's message, asks the gateway for a reply, and
// appends the reply. The user message is persisted before the gateway call.
func (s *ChatService) SendMessage(ctx context.Context, conversationID, content string) (*domain.Conversation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	release, err := s.locks.acquire(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	defer release()

	conv, err := s.load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	logger.Section("Turn")
	logger.Debug("Conversation %s has %d messages", conversationID, len(conv.Messages))

	// 1. Persist the user message
	working := conv.Clone()
	working.Messages = append(working.Messages, domain.NewMessage(domain.RoleUser, content, s.now()))
	if _, err := s.store.Update(ctx, conversationID, domain.ConversationUpdate{Messages: working.Messages}); err != nil {
		return nil, &domain.PersistError{ConversationID: conversationID, Step: domain.PersistStepUser, Err: err}
	}

	// 2. Ask for the reply
	prompt := fmt.Sprintf(
		loadPrompt(s.promptStore, driven.PromptChatTurn, defaultChatTurnPrompt),
		working.WebsiteURL,
		working.WebsiteContent,
		renderHistory(working.Messages, s.window),
		content,
	)
	resp, err := invokeWithTimeout(ctx, s.gateway, s.timeout, driven.InvokeRequest{
		Prompt:                 prompt,
		AddContextFromInternet: true,
		ContextURL:             working.WebsiteURL,
	})
	if err != nil {
		logger.Warn("Reply failed for %s: %v", conversationID, err)
		return nil, &domain.PersistError{ConversationID: conversationID, Step: domain.PersistStepAssistant, Err: err}
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		return nil, &domain.PersistError{ConversationID: conversationID, Step: domain.PersistStepAssistant, Err: errEmptyReply}
	}

	// 3. Persist the reply
	working.Messages = append(working.Messages, domain.NewMessage(domain.RoleAssistant, reply, s.now()))
	updated, err := s.store.Update(ctx, conversationID, domain.ConversationUpdate{Messages: working.Messages})
	if err != nil {
		return nil, &domain.PersistError{ConversationID: conversationID, Step: domain.PersistStepAssistant, Err: err}
	}

	logger.Debug("Conversation %s now has %d messages", conversationID, len(updated.Messages))
	return updated, nil
}

// Refresh re-runs the analysis and writes the new content together with a
// refresh message. A failed analysis is a *domain.AnalysisFailedError; a
// failed write is a *domain.PersistError.
func (s *ChatService) Refresh(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	release, err := s.locks.acquire(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	defer release()

	conv, err := s.load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	logger.Section("Refresh")
	logger.Info("Refreshing analysis of %s", conv.WebsiteURL)

	analysis, err := s.analyze(ctx, conv.WebsiteURL)
	if err != nil {
		return nil, &domain.AnalysisFailedError{URL: conv.WebsiteURL, Err: err}
	}
	content, err := analysis.Encode()
	if err != nil {
		return nil, &domain.AnalysisFailedError{URL: conv.WebsiteURL, Err: err}
	}

	messages := append(conv.Clone().Messages,
		domain.NewMessage(domain.RoleAssistant, analysis.RefreshMessage(conv.WebsiteURL), s.now()))

	updated, err := s.store.Update(ctx, conversationID, domain.ConversationUpdate{
		WebsiteContent: &content,
		Messages:       messages,
	})
	if err != nil {
		return nil, &domain.PersistError{ConversationID: conversationID, Step: domain.PersistStepRefresh, Err: err}
	}
	return updated, nil
}

// Delete removes a conversation. A pending turn on the same id finishes first.
func (s *ChatService) Delete(ctx context.Context, conversationID string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}

	release, err := s.locks.acquire(ctx, conversationID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.Delete(ctx, conversationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ConversationNotFound(conversationID)
		}
		return fmt.Errorf("delete conversation: %w", err)
	}

	logger.Info("Deleted conversation %s", conversationID)
	return nil
}

// Get returns one conversation.
func (s *ChatService) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.load(ctx, conversationID)
}

// List returns conversations sorted by opts.Sort, or most recently updated
// first when no sort is given.
func (s *ChatService) List(ctx context.Context, opts domain.ListOptions) ([]domain.Conversation, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	spec, err := domain.ParseSortSpec(opts.Sort)
	if err != nil {
		return nil, err
	}

	convs, err := s.store.List(ctx, spec.String(), opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Recent returns the most recently updated conversations.
func (s *ChatService) Recent(ctx context.Context) ([]domain.Conversation, error) {
	return s.List(ctx, domain.ListOptions{Sort: domain.DefaultSort, Limit: domain.RecentLimit})
}

// analyze asks the gateway for the structured description of websiteURL.
// An empty extraction is a success; the messages fall back to placeholders.
func (s *ChatService) analyze(ctx context.Context, websiteURL string) (domain.Analysis, error) {
	prompt := fmt.Sprintf(loadPrompt(s.promptStore, driven.PromptAnalyzeSite, defaultAnalyzeSitePrompt), websiteURL)

	resp, err := invokeWithTimeout(ctx, s.gateway, s.timeout, driven.InvokeRequest{
		Prompt:                 prompt,
		AddContextFromInternet: true,
		ContextURL:             websiteURL,
		ResponseJSONSchema:     domain.AnalysisSchema(),
		SchemaName:             analysisSchemaName,
	})
	if err != nil {
		return domain.Analysis{}, err
	}

	raw := []byte(resp.Object)
	if len(raw) == 0 {
		raw = []byte(resp.Text)
	}
	analysis, err := domain.DecodeAnalysis(raw)
	if err != nil {
		return domain.Analysis{}, err
	}
	if analysis.IsEmpty() {
		logger.Warn("Analysis of %s came back empty", websiteURL)
	}
	return analysis, nil
}

// load fetches a conversation by id.
func (s *ChatService) load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	convs, err := s.store.Filter(ctx, domain.ConversationFilter{ID: conversationID})
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if len(convs) == 0 {
		return nil, domain.ConversationNotFound(conversationID)
	}
	return &convs[0], nil
}

// currentEmail returns the email of the signed-in user, or "" when anonymous.
func (s *ChatService) currentEmail(ctx context.Context) string {
	if s.auth == nil {
		return ""
	}
	user, err := s.auth.Current(ctx)
	if err != nil {
		logger.Warn("Creating conversation anonymously: %v", err)
		return ""
	}
	if user == nil {
		return ""
	}
	return user.Email
}
