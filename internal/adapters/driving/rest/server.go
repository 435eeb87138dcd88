package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Config holds REST server options.
type Config struct {
	// CORSOrigins lists allowed origins. Empty allows any origin, which the
	// browser extension needs.
	CORSOrigins []string
}

// Server is the REST facade.
type Server struct {
	ports *Ports
	echo  *echo.Echo
}

// NewServer creates a REST server with the given ports.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handleError

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s := &Server{ports: ports, echo: e}
	e.Use(s.authenticate)
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.health)
	s.echo.POST("/ask", s.ask)
	s.echo.POST("/chat", s.concierge)

	api := s.echo.Group("/api")

	conversations := api.Group("/conversations")
	conversations.GET("", s.listConversations)
	conversations.GET("/filter", s.filterConversations)
	conversations.POST("", s.createConversation)
	conversations.GET("/:id", s.getConversation)
	conversations.POST("/:id/messages", s.sendMessage)
	conversations.POST("/:id/refresh", s.refreshConversation)
	conversations.DELETE("/:id", s.deleteConversation)

	api.POST("/invokeLLM", s.invokeLLM)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.me, requireUser)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.echo.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
