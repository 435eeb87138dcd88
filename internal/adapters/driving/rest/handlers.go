package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

type createConversationRequest struct {
	URL string `json:"url"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type askRequest struct {
	Question string `json:"question"`
	PageText string `json:"pageText"`
	URL      string `json:"url"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type conciergeRequest struct {
	Query string `json:"query"`
}

type conciergeResponse struct {
	Answer string   `json:"answer"`
	Steps  []string `json:"steps"`
}

type invokeLLMRequest struct {
	Prompt                 string         `json:"prompt"`
	AddContextFromInternet bool           `json:"add_context_from_internet"`
	ContextURL             string         `json:"context_url,omitempty"`
	ResponseJSONSchema     map[string]any `json:"response_json_schema,omitempty"`
}

type invokeLLMResponse struct {
	Text   string          `json:"text"`
	Object json.RawMessage `json:"object,omitempty"`
}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/conversations?sort=-updated_date&limit=N
func (s *Server) listConversations(c echo.Context) error {
	opts := domain.ListOptions{Sort: c.QueryParam("sort")}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		opts.Limit = limit
	}

	convs, err := s.ports.Chat.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return c.JSON(http.StatusOK, convs)
}

// GET /api/conversations/filter?id=...
// Returns a list of zero or one conversation.
func (s *Server) filterConversations(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	conv, err := s.ports.Chat.Get(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusOK, []domain.Conversation{})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, []domain.Conversation{*conv})
}

func (s *Server) getConversation(c echo.Context) error {
	conv, err := s.ports.Chat.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

func (s *Server) createConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	conv, err := s.ports.Chat.Analyze(c.Request().Context(), req.URL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, conv)
}

func (s *Server) sendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	conv, err := s.ports.Chat.SendMessage(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

func (s *Server) refreshConversation(c echo.Context) error {
	conv, err := s.ports.Chat.Refresh(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

func (s *Server) deleteConversation(c echo.Context) error {
	if err := s.ports.Chat.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /ask, the browser extension endpoint.
func (s *Server) ask(c echo.Context) error {
	if s.ports.Ask == nil {
		return domain.ErrNotImplemented
	}

	var req askRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	answer, err := s.ports.Ask.Ask(c.Request().Context(), driving.AskRequest{
		Question: req.Question,
		PageText: req.PageText,
		URL:      req.URL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, askResponse{Answer: answer})
}

// POST /chat, the site concierge for the configured website.
func (s *Server) concierge(c echo.Context) error {
	if s.ports.Concierge == nil {
		return domain.ErrNotImplemented
	}

	var req conciergeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	reply, err := s.ports.Concierge.Concierge(c.Request().Context(), req.Query)
	if err != nil {
		return err
	}
	steps := reply.Steps
	if steps == nil {
		steps = []string{}
	}
	return c.JSON(http.StatusOK, conciergeResponse{Answer: reply.Answer, Steps: steps})
}

func (s *Server) invokeLLM(c echo.Context) error {
	if s.ports.Invoker == nil {
		return domain.ErrNotImplemented
	}

	var req invokeLLMRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	result, err := s.ports.Invoker.InvokeLLM(c.Request().Context(), driving.InvokeLLMRequest{
		Prompt:                 req.Prompt,
		AddContextFromInternet: req.AddContextFromInternet,
		ContextURL:             req.ContextURL,
		ResponseJSONSchema:     req.ResponseJSONSchema,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invokeLLMResponse{Text: result.Text, Object: result.Object})
}

// POST /api/auth/login issues a token for the caller. The server's own
// local session is not changed.
func (s *Server) login(c echo.Context) error {
	if s.ports.Account == nil {
		return domain.ErrNotImplemented
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	token, err := s.ports.Account.IssueToken(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

// POST /api/auth/logout. Tokens are stateless; the client drops its copy.
func (s *Server) logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.UserFromContext(c.Request().Context()))
}
