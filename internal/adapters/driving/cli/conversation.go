package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

var (
	errNoChat  = errors.New("chat service not configured")
	errAborted = errors.New("aborted")
)

var (
	listLimit int
	listSort  string
	listJSON  bool
	showJSON  bool
	deleteYes bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyse a website and start a conversation",
	Long: `Analyses the website and creates a conversation seeded with a welcome
message that summarises the site's purpose, sections and features.

A bare domain such as example.com is treated as https://example.com.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var sendCmd = &cobra.Command{
	Use:   "send [conversation-id] [message]",
	Short: "Ask a question in a conversation",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSend,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Long: `Lists conversations, most recently updated first.

Sort by any of created_date, updated_date or title; prefix with '-' for
descending order.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Show a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [conversation-id]",
	Short: "Re-analyse a conversation's website",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefresh,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [conversation-id]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum number of conversations (0 = all)")
	listCmd.Flags().StringVar(&listSort, "sort", domain.DefaultSort, "sort field, '-' prefix for descending")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output conversations as JSON")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the conversation as JSON")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNoChat
	}

	cmd.Printf("Analysing %s...\n", args[0])
	conv, err := chatService.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	cmd.Printf("\n%s (%s)\n", conv.DisplayTitle(), conv.WebsiteURL)
	cmd.Printf("Conversation: %s\n\n", conv.ID)
	printLastReply(cmd, conv)
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNoChat
	}

	content := strings.Join(args[1:], " ")
	conv, err := chatService.SendMessage(cmd.Context(), args[0], content)
	if err != nil {
		var pe *domain.PersistError
		if errors.As(err, &pe) && pe.Step == domain.PersistStepAssistant {
			cmd.PrintErrln("Your message was saved but no reply was stored. Try sending again.")
		}
		return fmt.Errorf("send failed: %w", err)
	}

	printLastReply(cmd, conv)
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errNoChat
	}

	convs, err := chatService.List(cmd.Context(), domain.ListOptions{Sort: listSort, Limit: listLimit})
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	summaries := make([]domain.ConversationSummary, len(convs))
	for i := range convs {
		summaries[i] = convs[i].Summary()
	}

	if listJSON {
		return printJSON(cmd, summaries)
	}

	if len(summaries) == 0 {
		cmd.Println("No conversations yet. Run 'sitenav analyze <url>' to start one.")
		return nil
	}

	for _, s := range summaries {
		cmd.Printf("  %s  %s\n", s.ID, s.Title)
		cmd.Printf("      %s · %d messages · %s\n", s.WebsiteURL, s.MessageCount, s.UpdatedDate.Local().Format("2006-01-02 15:04"))
		if s.LastMessage != "" {
			cmd.Printf("      %s\n", truncate(s.LastMessage, 80))
		}
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNoChat
	}

	conv, err := chatService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if showJSON {
		return printJSON(cmd, conv)
	}
	cmd.Print(conv.Transcript())
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNoChat
	}

	cmd.Println("Refreshing analysis...")
	conv, err := chatService.Refresh(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	printLastReply(cmd, conv)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errNoChat
	}

	if !deleteYes {
		cmd.Printf("Delete conversation %s? [y/N]: ", args[0])
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			return errAborted
		}
	}

	if err := chatService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	cmd.Printf("Deleted conversation %s\n", args[0])
	return nil
}

// printLastReply prints the newest message of the conversation.
func printLastReply(cmd *cobra.Command, conv *domain.Conversation) {
	if last := conv.LastMessage(); last != nil {
		cmd.Println(last.Content)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
