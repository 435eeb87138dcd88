// Package cli provides the sitenav command-line interface built on cobra.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired by main. Commands check for nil and report a clear error.
var (
	chatService      driving.ChatService
	askService       driving.AskService
	conciergeService driving.ConciergeService
	invokerService   driving.LLMInvoker
	settingsService  driving.SettingsService
	accountService   driving.AccountService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sitenav",
	Short: "Ask questions about any website",
	Long: `sitenav analyses a website and answers navigation questions about it.

Start with 'sitenav analyze <url>' to create a conversation, then use
'sitenav send <id> <question>' or 'sitenav chat' for an interactive session.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
}

// Services groups the driving ports the commands use.
type Services struct {
	Chat      driving.ChatService
	Ask       driving.AskService
	Concierge driving.ConciergeService
	Invoker   driving.LLMInvoker
	Settings  driving.SettingsService
	Account   driving.AccountService
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	chatService = s.Chat
	askService = s.Ask
	conciergeService = s.Concierge
	invokerService = s.Invoker
	settingsService = s.Settings
	accountService = s.Account
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
