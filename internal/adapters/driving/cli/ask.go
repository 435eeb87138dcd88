package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

var (
	askURL      string
	askPageFile string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-off question about a page",
	Long: `Answers a single question about a page without creating a conversation.

Pass the page's visible text with --page-file (use '-' to read stdin).
With only --url, the page is fetched when live page context is enabled.

Examples:
  sitenav ask "Where do I change my password?" --url https://example.com/account
  pbpaste | sitenav ask "What does this page offer?" --page-file -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askURL, "url", "", "URL of the page")
	askCmd.Flags().StringVar(&askPageFile, "page-file", "", "file holding the page text ('-' for stdin)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	pageText, err := readPageText(cmd.InOrStdin(), askPageFile)
	if err != nil {
		return err
	}

	answer, err := askService.Ask(cmd.Context(), driving.AskRequest{
		Question: strings.Join(args, " "),
		PageText: pageText,
		URL:      askURL,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer)
	return nil
}

// readPageText loads page text from path, or from stdin when path is "-".
func readPageText(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read page file: %w", err)
		}
		return string(data), nil
	}
}
