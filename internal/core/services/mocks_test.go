package services

import (
	"context"
	"encoding/json"
	"errors"
	stdsync "sync"
	"time"

	"github.com/custodia-labs/sitenav/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// --- Mock implementations for chat testing ---

// mockGateway implements driven.LLMGateway for testing.
// invokeFn decides each reply; requests are recorded in call order.
type mockGateway struct {
	mu       stdsync.Mutex
	invokeFn func(ctx context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error)
	requests []driven.InvokeRequest
	active   int
	peak     int
}

func (m *mockGateway) Invoke(ctx context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.active++
	if m.active > m.peak {
		m.peak = m.active
	}
	fn := m.invokeFn
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if fn == nil {
		return &driven.InvokeResponse{Text: "ok"}, nil
	}
	return fn(ctx, req)
}

func (m *mockGateway) ModelName() string           { return "mock" }
func (m *mockGateway) Ping(_ context.Context) error { return nil }
func (m *mockGateway) Close() error                 { return nil }

func (m *mockGateway) calls() []driven.InvokeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.InvokeRequest(nil), m.requests...)
}

func (m *mockGateway) maxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// analysisReply returns an invokeFn that answers structured calls with the
// given analysis and free-text calls with text.
func analysisReply(a domain.Analysis, text string) func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
	return func(_ context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
		if req.WantsJSON() {
			data, err := json.Marshal(a)
			if err != nil {
				return nil, err
			}
			return &driven.InvokeResponse{Text: string(data), Object: data}, nil
		}
		return &driven.InvokeResponse{Text: text}, nil
	}
}

// mockAuth implements driven.AuthContext for testing.
type mockAuth struct {
	user      *domain.User
	err       error
	loggedIn  *domain.User
	token     string
	loggedOut bool
}

func (m *mockAuth) Current(_ context.Context) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockAuth) Login(_ context.Context, user domain.User) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.loggedIn = &user
	return m.token, nil
}

func (m *mockAuth) Logout(_ context.Context) error {
	m.loggedOut = true
	return m.err
}

// mockTokens implements driven.TokenService for testing.
type mockTokens struct {
	token  string
	user   *domain.User
	err    error
	issued *domain.User
}

func (m *mockTokens) Issue(user domain.User) (string, error) {
	m.issued = &user
	return m.token, m.err
}

func (m *mockTokens) Verify(_ string) (*domain.User, error) {
	return m.user, m.err
}

// countingStore wraps the memory store, counting creates and failing
// selected updates.
type countingStore struct {
	*memory.ConversationStore
	mu          stdsync.Mutex
	creates     int
	updates     int
	failUpdate  map[int]error
	failCreate  error
	deleteCalls int
}

func newCountingStore() *countingStore {
	return &countingStore{
		ConversationStore: memory.NewConversationStoreWithClock(tickingClock()),
		failUpdate:        make(map[int]error),
	}
}

func (s *countingStore) Create(ctx context.Context, conv domain.Conversation) (*domain.Conversation, error) {
	s.mu.Lock()
	s.creates++
	failErr := s.failCreate
	s.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}
	return s.ConversationStore.Create(ctx, conv)
}

// Update fails the n-th call (1-based) when failUpdate[n] is set.
func (s *countingStore) Update(ctx context.Context, id string, u domain.ConversationUpdate) (*domain.Conversation, error) {
	s.mu.Lock()
	s.updates++
	failErr := s.failUpdate[s.updates]
	s.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}
	return s.ConversationStore.Update(ctx, id, u)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls++
	s.mu.Unlock()
	return s.ConversationStore.Delete(ctx, id)
}

func (s *countingStore) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu stdsync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

var errStoreDown = errors.New("store unavailable")
