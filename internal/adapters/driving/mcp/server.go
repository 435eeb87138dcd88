package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitenav/internal/logger"
)

// Version is the MCP server version reported during initialisation.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes sitenav conversations to MCP clients. Assistants call
// analyze_website to open a conversation about a site, then send_message
// to ask navigation questions about it. Transcripts are readable as
// sitenav://conversations resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer builds the MCP server and registers the conversation tools,
// plus ask_page when an Ask port is given.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "sitenav",
		Title:   "sitenav website navigator",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions(ports)}),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells the client which tools to reach for first.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("sitenav answers questions about how to find things on a website.\n")
	b.WriteString("Call analyze_website with a URL to start a conversation, then send_message ")
	b.WriteString("with its conversation_id for each question. Use refresh_analysis when the ")
	b.WriteString("site has changed and list_conversations to resume earlier work.")
	if ports.Ask != nil {
		b.WriteString("\nFor a single question about a page you already have open, call ask_page ")
		b.WriteString("with the page text instead of starting a conversation.")
	}
	return b.String()
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves MCP over streamable HTTP on addr until ctx is cancelled.
// In-flight sessions get shutdownTimeout to finish.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Debug("MCP server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http: %w", err)
	}
	return nil
}
