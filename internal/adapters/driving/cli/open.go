package cli

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

// openURL launches the browser. Replaced in tests.
var openURL = OpenBrowser

var openCmd = &cobra.Command{
	Use:   "open [conversation-id]",
	Short: "Open a conversation's website in the browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNoChat
	}

	conv, err := chatService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := openURL(conv.WebsiteURL); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	cmd.Printf("Opened %s\n", conv.WebsiteURL)
	return nil
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
