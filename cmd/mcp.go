package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/azreco/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing transcription tools",
	Long: `Run a Model Context Protocol (MCP) server that exposes azreco as tools.

The MCP server provides two tools:
- transcribe_audio_file: upload a local audio file and return the transcript
- transcribe_video_link: submit a YouTube, Facebook, Dailymotion or Twitter link

Credentials and the default language are read from config.toml or the
AZRECO_* environment variables; they are never accepted as tool arguments.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  azreco mcp

  # Run MCP server with HTTP transport on port 8080
  azreco mcp --transport=http --port=8080`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdio carries the protocol, keep the terminal UI out of it
		config.Verbose = false
		config.Quiet = true
		if _, err := internal.ParseAccountID(config.APIID); err != nil {
			return err
		}
		if config.APIToken == "" {
			return fmt.Errorf("API token is required - set api_token in config.toml or AZRECO_API_TOKEN")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		if transport != "stdio" && transport != "http" {
			return fmt.Errorf("unsupported transport %q (use stdio or http)", transport)
		}

		app := newApp(config)
		mcpServer := internal.NewMCPServer(app, version)

		if transport == "http" {
			fmt.Fprintf(os.Stderr, "Starting azreco MCP server on HTTP port %d...\n", port)
		}

		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
