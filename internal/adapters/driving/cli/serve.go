package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/rest"
	"github.com/custodia-labs/sitenav/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the HTTP API used by the browser extension and other clients.

Conversations live under /api/conversations; one-off page questions go to
/ask, and /chat answers visitor questions from the site_context prompt file.
Send 'Authorization: Bearer <token>' from 'sitenav login' to attribute new
conversations to a user.

The server listens on 127.0.0.1:8080 unless server.addr or --addr says
otherwise. Binding other interfaces exposes /api/invokeLLM to the network.

Examples:
  sitenav serve
  sitenav serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	cfg := rest.Config{}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cfg.CORSOrigins = settings.Server.CORSOrigins
		if addr == "" {
			addr = settings.Server.Addr
		}
	}
	if addr == "" {
		addr = domain.DefaultServerAddr
	}

	server, err := rest.NewServer(&rest.Ports{
		Chat:      chatService,
		Ask:       askService,
		Concierge: conciergeService,
		Invoker:   invokerService,
		Account:   accountService,
	}, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "REST API listening on http://%s\n", displayAddr(addr))
	return server.Run(cmd.Context(), addr)
}

// displayAddr fills in localhost for addresses that only name a port.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
