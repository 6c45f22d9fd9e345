package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/azreco/internal"
)

// historyCmd lists transcripts saved with keep_history enabled
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved transcripts",
	Long: `List transcripts saved in the data directory.

Transcripts are only saved when keep_history = true is set in config.toml
(or AZRECO_KEEP_HISTORY=true).`,
	Example: `  # List saved transcripts
  azreco history

  # Print one of them
  azreco history show 20261017-054800-file-interview

  # Remove all saved transcripts
  azreco history clear --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := internal.ListTranscripts(config.TranscriptsDir)
		if err != nil {
			return err
		}

		content := internal.HistoryMarkdown(entries)
		if internal.StdoutIsTerminal() {
			rendered, err := internal.RenderMarkdown(content)
			if err != nil {
				return err
			}
			content = rendered
		}

		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a saved transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := internal.ReadTranscript(args[0], config.TranscriptsDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), transcript)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved transcripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !internal.AskUser("Remove all saved transcripts?") {
			return nil
		}

		removed, err := internal.ClearTranscripts(config.TranscriptsDir)
		if err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Removed %d transcript(s)\n", removed)
		}
		return nil
	},
}

func init() {
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
