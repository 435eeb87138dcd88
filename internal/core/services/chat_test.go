package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

var githubAnalysis = domain.Analysis{
	Title:           "GitHub",
	Description:     "Where the world builds software",
	MainSections:    []string{"Repositories", "Issues"},
	NavigationItems: []string{"Sign in", "Explore"},
}

func newTestChat(gw *mockGateway, store driven.ConversationStore, auth driven.AuthContext) *ChatService {
	return NewChatService(store, gw, auth, ChatOptions{
		GatewayTimeout: time.Second,
		Now:            tickingClock(),
	})
}

// seedConversation creates a conversation through Analyze.
func seedConversation(t *testing.T, svc *ChatService) *domain.Conversation {
	t.Helper()
	conv, err := svc.Analyze(context.Background(), "github.com")
	require.NoError(t, err)
	return conv
}

func TestChatService_Analyze_BareDomain(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)

	conv, err := svc.Analyze(context.Background(), "github.com")

	require.NoError(t, err)
	assert.Equal(t, "https://github.com", conv.WebsiteURL)
	assert.Equal(t, "GitHub", conv.Title)
	assert.Equal(t, domain.StatusActive, conv.Status)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, conv.Messages[0].Role)
	assert.Contains(t, conv.Messages[0].Content, "- Repositories")
	assert.Contains(t, conv.Messages[0].Content, "- Issues")
	assert.Contains(t, conv.Messages[0].Content, "**GitHub**")

	stored, err := domain.DecodeAnalysis([]byte(conv.WebsiteContent))
	require.NoError(t, err)
	assert.Equal(t, githubAnalysis.MainSections, stored.MainSections)

	calls := gw.calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].WantsJSON())
	assert.True(t, calls[0].AddContextFromInternet)
	assert.Equal(t, "https://github.com", calls[0].ContextURL)
	assert.Contains(t, calls[0].Prompt, "https://github.com")
	assert.Equal(t, 1, store.createCount())
}

func TestChatService_Analyze_EmptyInput(t *testing.T) {
	gw := &mockGateway{}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)

	for _, input := range []string{"", "   ", "https://"} {
		_, err := svc.Analyze(context.Background(), input)

		var urlErr *domain.InvalidURLError
		assert.True(t, errors.As(err, &urlErr), "input %q", input)
		assert.ErrorIs(t, err, domain.ErrInvalidURL)
	}

	assert.Empty(t, gw.calls())
	assert.Equal(t, 0, store.createCount())
}

func TestChatService_Analyze_EmptyExtractionSucceeds(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{Object: []byte(`{}`)}, nil
	}}
	svc := newTestChat(gw, newCountingStore(), nil)

	conv, err := svc.Analyze(context.Background(), "https://docs.example.com/start")

	require.NoError(t, err)
	assert.Equal(t, "docs.example.com", conv.Title)
	assert.Contains(t, conv.Messages[0].Content, "**docs.example.com**")
	assert.Contains(t, conv.Messages[0].Content, "No sections detected")
	assert.Contains(t, conv.Messages[0].Content, "No navigation items detected")
}

func TestChatService_Analyze_GatewayFailure(t *testing.T) {
	cause := errors.New("model overloaded")
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return nil, cause
	}}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)

	_, err := svc.Analyze(context.Background(), "example.com")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, store.createCount())
}

func TestChatService_Analyze_MalformedObject(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{Text: "not json"}, nil
	}}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)

	_, err := svc.Analyze(context.Background(), "example.com")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Equal(t, 0, store.createCount())
}

func TestChatService_Analyze_StoreFailure(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	store := newCountingStore()
	store.failCreate = errStoreDown
	svc := newTestChat(gw, store, nil)

	_, err := svc.Analyze(context.Background(), "github.com")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, errStoreDown)

	all, _ := store.List(context.Background(), domain.DefaultSort, 0)
	assert.Empty(t, all)
}

func TestChatService_Analyze_Timeout(t *testing.T) {
	gw := &mockGateway{invokeFn: func(ctx context.Context, _ driven.InvokeRequest) (*driven.InvokeResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewChatService(newCountingStore(), gw, nil, ChatOptions{GatewayTimeout: 20 * time.Millisecond})

	_, err := svc.Analyze(context.Background(), "example.com")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, domain.ErrGatewayTimeout)
}

func TestChatService_Analyze_StampsCreator(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	auth := &mockAuth{user: &domain.User{Email: "ada@example.com"}}
	svc := newTestChat(gw, newCountingStore(), auth)

	conv := seedConversation(t, svc)

	assert.Equal(t, "ada@example.com", conv.CreatedBy)
}

func TestChatService_Analyze_AuthErrorIsAnonymous(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	auth := &mockAuth{err: domain.ErrAuthExpired}
	svc := newTestChat(gw, newCountingStore(), auth)

	conv := seedConversation(t, svc)

	assert.Empty(t, conv.CreatedBy)
}

func TestChatService_Analyze_UsesPromptStore(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	svc := newTestChat(gw, newCountingStore(), nil)
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnalyzeSite: "Describe %s briefly.",
	}})

	seedConversation(t, svc)

	assert.Equal(t, "Describe https://github.com briefly.", gw.calls()[0].Prompt)
}

func TestChatService_SendMessage_AppendsTwoMessages(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "Pricing is under **Plans**.")}
	svc := newTestChat(gw, newCountingStore(), nil)
	conv := seedConversation(t, svc)

	updated, err := svc.SendMessage(context.Background(), conv.ID, "  Where is pricing?  ")

	require.NoError(t, err)
	require.Len(t, updated.Messages, 3)
	assert.Equal(t, domain.RoleUser, updated.Messages[1].Role)
	assert.Equal(t, "Where is pricing?", updated.Messages[1].Content)
	assert.Equal(t, domain.RoleAssistant, updated.Messages[2].Role)
	assert.Equal(t, "Pricing is under **Plans**.", updated.Messages[2].Content)
	assert.True(t, updated.Messages[2].Timestamp.After(updated.Messages[1].Timestamp))

	turn := gw.calls()[1]
	assert.False(t, turn.WantsJSON())
	assert.True(t, turn.AddContextFromInternet)
	assert.Contains(t, turn.Prompt, "https://github.com")
	assert.Contains(t, turn.Prompt, conv.WebsiteContent)
	assert.Contains(t, turn.Prompt, "User's question: Where is pricing?")
}

func TestChatService_SendMessage_HistoryWindow(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)
	conv := seedConversation(t, svc)

	// Build a nine-message history: welcome plus four turns.
	messages := conv.Messages
	for i := 1; i <= 4; i++ {
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: fmt.Sprintf("question %d", i)},
			domain.Message{Role: domain.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}
	_, err := store.ConversationStore.Update(context.Background(), conv.ID, domain.ConversationUpdate{Messages: messages})
	require.NoError(t, err)

	gw.invokeFn = analysisReply(githubAnalysis, "answer 5")
	updated, err := svc.SendMessage(context.Background(), conv.ID, "question 5")
	require.NoError(t, err)
	assert.Len(t, updated.Messages, 11)

	prompt := gw.calls()[1].Prompt
	want := strings.Join([]string{
		"assistant: answer 2",
		"user: question 3",
		"assistant: answer 3",
		"user: question 4",
		"assistant: answer 4",
		"user: question 5",
	}, "\n")
	assert.Contains(t, prompt, "Previous conversation:\n"+want+"\n")
	assert.NotContains(t, prompt, "user: question 2")
}

func TestChatService_SendMessage_GatewayFailure(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)
	conv := seedConversation(t, svc)

	gw.invokeFn = func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return nil, errors.New("upstream 500")
	}
	_, err := svc.SendMessage(context.Background(), conv.ID, "Where is pricing?")

	var persistErr *domain.PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, domain.PersistStepAssistant, persistErr.Step)
	assert.Equal(t, conv.ID, persistErr.ConversationID)

	stored, err := svc.Get(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, domain.RoleUser, stored.Messages[1].Role)
	assert.Equal(t, "Where is pricing?", stored.Messages[1].Content)
}

func TestChatService_SendMessage_GatewayTimeout(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	svc := NewChatService(newCountingStore(), gw, nil, ChatOptions{GatewayTimeout: 20 * time.Millisecond})
	conv := seedConversation(t, svc)

	gw.invokeFn = func(ctx context.Context, _ driven.InvokeRequest) (*driven.InvokeResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	_, err := svc.SendMessage(context.Background(), conv.ID, "hello")

	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.ErrorIs(t, err, domain.ErrGatewayTimeout)

	var timeoutErr *domain.GatewayTimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, 20*time.Millisecond, timeoutErr.Timeout)
}

func TestChatService_SendMessage_EmptyReply(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "   ")}
	svc := newTestChat(gw, newCountingStore(), nil)
	conv := seedConversation(t, svc)

	_, err := svc.SendMessage(context.Background(), conv.ID, "hello")

	var persistErr *domain.PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, domain.PersistStepAssistant, persistErr.Step)
}

func TestChatService_SendMessage_UserWriteFails(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "reply")}
	store := newCountingStore()
	store.failUpdate[1] = errStoreDown
	svc := newTestChat(gw, store, nil)
	conv := seedConversation(t, svc)

	_, err := svc.SendMessage(context.Background(), conv.ID, "hello")

	var persistErr *domain.PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, domain.PersistStepUser, persistErr.Step)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Len(t, gw.calls(), 1, "no reply requested after a failed user write")
}

func TestChatService_SendMessage_AssistantWriteFails(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "reply")}
	store := newCountingStore()
	store.failUpdate[2] = errStoreDown
	svc := newTestChat(gw, store, nil)
	conv := seedConversation(t, svc)

	_, err := svc.SendMessage(context.Background(), conv.ID, "hello")

	var persistErr *domain.PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, domain.PersistStepAssistant, persistErr.Step)

	stored, _ := svc.Get(context.Background(), conv.ID)
	assert.Len(t, stored.Messages, 2)
}

func TestChatService_SendMessage_Validation(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "reply")}
	svc := newTestChat(gw, newCountingStore(), nil)

	_, err := svc.SendMessage(context.Background(), "any", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SendMessage(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, gw.calls())
}

func TestChatService_SendMessage_ConcurrentTurnsAreSerialised(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	svc := newTestChat(gw, newCountingStore(), nil)
	conv := seedConversation(t, svc)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	gw.invokeFn = func(_ context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
		if strings.Contains(req.Prompt, "User's question: first") {
			close(firstStarted)
			<-releaseFirst
			return &driven.InvokeResponse{Text: "reply to first"}, nil
		}
		return &driven.InvokeResponse{Text: "reply to second"}, nil
	}

	type result struct {
		conv *domain.Conversation
		err  error
	}
	firstDone := make(chan result, 1)
	secondDone := make(chan result, 1)

	go func() {
		c, err := svc.SendMessage(context.Background(), conv.ID, "first")
		firstDone <- result{c, err}
	}()
	<-firstStarted

	go func() {
		c, err := svc.SendMessage(context.Background(), conv.ID, "second")
		secondDone <- result{c, err}
	}()

	// The second turn must wait for the first.
	select {
	case <-secondDone:
		t.Fatal("second turn finished while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(releaseFirst)

	first := <-firstDone
	second := <-secondDone
	require.NoError(t, first.err)
	require.NoError(t, second.err)

	final, err := svc.Get(context.Background(), conv.ID)
	require.NoError(t, err)

	var contents []string
	for _, m := range final.Messages[1:] {
		contents = append(contents, m.Role.String()+":"+m.Content)
	}
	assert.Equal(t, []string{
		"user:first",
		"assistant:reply to first",
		"user:second",
		"assistant:reply to second",
	}, contents)
	assert.Equal(t, 1, gw.maxConcurrent())
	assert.Equal(t, 0, svc.locks.size())
}

func TestChatService_SendMessage_CancelledWhileQueued(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	svc := newTestChat(gw, newCountingStore(), nil)
	conv := seedConversation(t, svc)

	release, err := svc.locks.acquire(context.Background(), conv.ID)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.SendMessage(ctx, conv.ID, "hello")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	stored, _ := svc.Get(context.Background(), conv.ID)
	assert.Len(t, stored.Messages, 1)
}

func TestChatService_Refresh(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	store := newCountingStore()
	svc := newTestChat(gw, store, nil)
	conv := seedConversation(t, svc)

	fresh := domain.Analysis{MainSections: []string{"Copilot"}}
	gw.invokeFn = analysisReply(fresh, "")

	updated, err := svc.Refresh(context.Background(), conv.ID)

	require.NoError(t, err)
	require.Len(t, updated.Messages, 2)
	assert.Contains(t, updated.Messages[1].Content, "I've refreshed my analysis of **https://github.com**!")
	assert.Contains(t, updated.Messages[1].Content, "- Copilot")
	assert.Contains(t, updated.Messages[1].Content, "No navigation items detected")
	assert.Contains(t, updated.WebsiteContent, "Copilot")
	assert.Equal(t, "GitHub", updated.Title)

	store.mu.Lock()
	assert.Equal(t, 1, store.updates, "content and message written together")
	store.mu.Unlock()
}

func TestChatService_Refresh_GatewayFailureLeavesConversation(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	svc := newTestChat(gw, newCountingStore(), nil)
	conv := seedConversation(t, svc)

	gw.invokeFn = func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return nil, errors.New("boom")
	}
	_, err := svc.Refresh(context.Background(), conv.ID)

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	stored, _ := svc.Get(context.Background(), conv.ID)
	assert.Equal(t, conv.WebsiteContent, stored.WebsiteContent)
	assert.Len(t, stored.Messages, 1)
}

func TestChatService_Refresh_WriteFailure(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	store := newCountingStore()
	store.failUpdate[1] = errStoreDown
	svc := newTestChat(gw, store, nil)
	conv := seedConversation(t, svc)

	_, err := svc.Refresh(context.Background(), conv.ID)

	assert.NotErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.ErrorIs(t, err, errStoreDown)
	var persistErr *domain.PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, domain.PersistStepRefresh, persistErr.Step)
}

func TestChatService_Refresh_NotFound(t *testing.T) {
	svc := newTestChat(&mockGateway{}, newCountingStore(), nil)

	_, err := svc.Refresh(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatService_Delete_Twice(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(githubAnalysis, "")}
	svc := newTestChat(gw, newCountingStore(), nil)
	conv := seedConversation(t, svc)

	require.NoError(t, svc.Delete(context.Background(), conv.ID))

	err := svc.Delete(context.Background(), conv.ID)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, conv.ID, notFound.ID)

	_, err = svc.Get(context.Background(), conv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatService_ListAndRecent(t *testing.T) {
	gw := &mockGateway{invokeFn: analysisReply(domain.Analysis{}, "")}
	svc := newTestChat(gw, newCountingStore(), nil)
	ctx := context.Background()

	var created []*domain.Conversation
	for _, host := range []string{"a.example", "b.example", "c.example", "d.example"} {
		conv, err := svc.Analyze(ctx, host)
		require.NoError(t, err)
		created = append(created, conv)
	}

	recent, err := svc.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, domain.RecentLimit)
	assert.Equal(t, created[3].ID, recent[0].ID)
	assert.Equal(t, created[1].ID, recent[2].ID)

	all, err := svc.List(ctx, domain.ListOptions{Sort: "title"})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "a.example", all[0].Title)

	_, err = svc.List(ctx, domain.ListOptions{Sort: "-size"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatService_NoStore(t *testing.T) {
	svc := NewChatService(nil, &mockGateway{}, nil, ChatOptions{})

	_, err := svc.Analyze(context.Background(), "example.com")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	_, err = svc.Recent(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	assert.ErrorIs(t, svc.Delete(context.Background(), "x"), domain.ErrNotImplemented)
}

func TestChatService_NoGateway(t *testing.T) {
	svc := NewChatService(newCountingStore(), nil, nil, ChatOptions{})

	_, err := svc.Analyze(context.Background(), "example.com")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
