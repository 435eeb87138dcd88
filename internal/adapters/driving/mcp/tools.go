package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// defaultListLimit caps list_conversations when no limit is given.
const defaultListLimit = 20

// AnalyzeInput is the input schema for the analyze_website tool.
type AnalyzeInput struct {
	URL string `json:"url" jsonschema:"the website to analyse; a bare domain gets https:// added"`
}

// ConversationInput identifies a conversation.
type ConversationInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"the conversation id"`
}

// SendMessageInput is the input schema for the send_message tool.
type SendMessageInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"the conversation id"`
	Content        string `json:"content" jsonschema:"the question to ask about the website"`
}

// ListInput is the input schema for the list_conversations tool.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of conversations to return (default 20)"`
}

// AskPageInput is the input schema for the ask_page tool.
type AskPageInput struct {
	Question string `json:"question" jsonschema:"the question about the page"`
	PageText string `json:"page_text,omitempty" jsonschema:"visible text of the page"`
	URL      string `json:"url,omitempty" jsonschema:"the page URL"`
}

// ConversationOutput is a conversation with its latest reply.
type ConversationOutput struct {
	ConversationID string          `json:"conversation_id"`
	Title          string          `json:"title"`
	WebsiteURL     string          `json:"website_url"`
	Reply          string          `json:"reply"`
	MessageCount   int             `json:"message_count"`
	Messages       []MessageOutput `json:"messages,omitempty"`
}

// MessageOutput is a single message.
type MessageOutput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ListOutput is the output schema for the list_conversations tool.
type ListOutput struct {
	Conversations []domain.ConversationSummary `json:"conversations"`
	Count         int                          `json:"count"`
}

// DeleteOutput is the output schema for the delete_conversation tool.
type DeleteOutput struct {
	Deleted string `json:"deleted"`
}

// AskPageOutput is the output schema for the ask_page tool.
type AskPageOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_website",
		Description: "Analyse a website and start a navigation conversation about it",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_message",
		Description: "Ask a question in an existing conversation and get the assistant's reply",
	}, s.handleSendMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh_analysis",
		Description: "Re-analyse the conversation's website and post the refreshed overview",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_conversation",
		Description: "Get a conversation with its full message history",
	}, s.handleGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_conversations",
		Description: "List conversations, most recently updated first",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_conversation",
		Description: "Delete a conversation",
	}, s.handleDelete)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_page",
			Description: "Answer a question about page text you already have",
		}, s.handleAskPage)
	}
}

// handleAnalyze handles the analyze_website tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, ConversationOutput, error) {
	conv, err := s.ports.Chat.Analyze(ctx, input.URL)
	if err != nil {
		return nil, ConversationOutput{}, err
	}
	return nil, toConversationOutput(conv, false), nil
}

// handleSendMessage handles the send_message tool invocation.
func (s *Server) handleSendMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendMessageInput,
) (*mcp.CallToolResult, ConversationOutput, error) {
	conv, err := s.ports.Chat.SendMessage(ctx, input.ConversationID, input.Content)
	if err != nil {
		return nil, ConversationOutput{}, err
	}
	return nil, toConversationOutput(conv, false), nil
}

// handleRefresh handles the refresh_analysis tool invocation.
func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConversationInput,
) (*mcp.CallToolResult, ConversationOutput, error) {
	conv, err := s.ports.Chat.Refresh(ctx, input.ConversationID)
	if err != nil {
		return nil, ConversationOutput{}, err
	}
	return nil, toConversationOutput(conv, false), nil
}

// handleGet handles the get_conversation tool invocation.
func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConversationInput,
) (*mcp.CallToolResult, ConversationOutput, error) {
	conv, err := s.ports.Chat.Get(ctx, input.ConversationID)
	if err != nil {
		return nil, ConversationOutput{}, err
	}
	return nil, toConversationOutput(conv, true), nil
}

// handleList handles the list_conversations tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	convs, err := s.ports.Chat.List(ctx, domain.ListOptions{Sort: domain.DefaultSort, Limit: limit})
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Conversations: make([]domain.ConversationSummary, len(convs)),
		Count:         len(convs),
	}
	for i := range convs {
		output.Conversations[i] = convs[i].Summary()
	}
	return nil, output, nil
}

// handleDelete handles the delete_conversation tool invocation.
func (s *Server) handleDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConversationInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.ports.Chat.Delete(ctx, input.ConversationID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Deleted: input.ConversationID}, nil
}

// handleAskPage handles the ask_page tool invocation.
func (s *Server) handleAskPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskPageInput,
) (*mcp.CallToolResult, AskPageOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, driving.AskRequest{
		Question: input.Question,
		PageText: input.PageText,
		URL:      input.URL,
	})
	if err != nil {
		return nil, AskPageOutput{}, err
	}
	return nil, AskPageOutput{Answer: answer}, nil
}

// toConversationOutput condenses a conversation. The reply is the last
// assistant message; full history is included only when asked for.
func toConversationOutput(conv *domain.Conversation, withMessages bool) ConversationOutput {
	out := ConversationOutput{
		ConversationID: conv.ID,
		Title:          conv.DisplayTitle(),
		WebsiteURL:     conv.WebsiteURL,
		MessageCount:   len(conv.Messages),
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == domain.RoleAssistant {
			out.Reply = conv.Messages[i].Content
			break
		}
	}
	if withMessages {
		out.Messages = make([]MessageOutput, len(conv.Messages))
		for i, m := range conv.Messages {
			out.Messages[i] = MessageOutput{Role: m.Role.String(), Content: m.Content}
		}
	}
	return out
}
