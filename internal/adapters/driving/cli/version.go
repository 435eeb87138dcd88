package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sitenav version",
	Long: `Print the sitenav build version, the MCP server version it reports to
clients, and the Go runtime it was built with.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("sitenav version %s\n", version)
		cmd.Printf("  mcp server: %s\n", mcp.Version)
		cmd.Printf("  go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
