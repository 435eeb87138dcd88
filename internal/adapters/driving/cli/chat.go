package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui"
)

// chatCmd represents the interactive chat command.
var chatCmd = &cobra.Command{
	Use:   "chat [url]",
	Short: "Launch the interactive chat",
	Long: `Launch the interactive terminal chat for sitenav.

Enter a website to analyse it, or pick one of your recent analyses, then ask
how to find things on the site. Passing a URL starts its analysis right away.

Controls:
  Enter    - Analyse / Send
  Tab      - Switch to recent analyses
  Ctrl+R   - Refresh the site analysis
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(chatService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())
	if len(args) == 1 {
		app.WithURL(args[0])
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
