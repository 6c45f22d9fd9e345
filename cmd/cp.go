package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/azreco/internal"
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp -a <audio file or link>",
	Short: "Copy the transcript to the clipboard",
	Example: `  # Copy the transcript of a local recording
  azreco cp -a meeting.mp3 -i 123 -k secret -l en-US

  # Copy the transcript of a video
  azreco cp -a "https://youtu.be/tAP1eZYEuKA"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := internal.BuildRequest(cmd, config)
		if err != nil {
			return err
		}

		transcript, err := newApp(config).Transcribe(cmd.Context(), req)
		if err != nil {
			return err
		}

		if err := copyToClipboard(transcript); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	internal.AddAudioFlag(cpCmd)
	internal.AddCredentialFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}
