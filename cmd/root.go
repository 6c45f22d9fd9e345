package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/azreco/internal"
)

var (
	config *internal.Config

	// newApp is replaced in tests
	newApp = func(cfg *internal.Config) *internal.App {
		return internal.NewApp(cfg)
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "azreco -a <audio file or link> -i <id> -k <token> -l <lang>",
	Short: "Transcribe audio or video files through the Azreco API",
	Long: `azreco sends an audio file, or a link to a public video, to the Azreco
transcription service and prints the returned transcript.

Links to YouTube, Facebook, Dailymotion and Twitter are passed to the service,
which fetches the media itself. Anything else is treated as a local file path
and uploaded.

Credentials and the language can also be set in config.toml or through the
AZRECO_API_ID, AZRECO_API_TOKEN and AZRECO_LANG environment variables.`,
	Example: `  # Transcribe a local file and print the transcript
  azreco -a interview.wav -i 123 -k secret -l en-US

  # Write the transcript to a file
  azreco -a interview.wav -o interview.txt -i 123 -k secret -l en-US

  # Transcribe a YouTube video
  azreco -a "https://www.youtube.com/watch?v=tAP1eZYEuKA" -i 123 -k secret -l tr-TR`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := internal.BuildRequest(cmd, config)
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		return newApp(config).Run(cmd.Context(), req, outputFile)
	},
}

// loadConfig reads configuration once and applies persistent flag overrides
func loadConfig(cmd *cobra.Command) error {
	if config == nil {
		configFile, _ := cmd.Flags().GetString("config")
		if configFile == "" {
			// Ensure default config exists in XDG config directory
			if err := internal.EnsureDefaultConfig(internal.DefaultConfigDir()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
			}
		}
		config = internal.InitConfig(configFile)
	}

	if err := internal.HandleVerboseFlag(cmd, config); err != nil {
		return err
	}
	if err := internal.HandleServiceFlags(cmd, config); err != nil {
		return err
	}
	return internal.ValidateBaseURL(config.BaseURL)
}

// exitGrace is how long a cancelled command may take to return before the process is forced out.
// It is longer than the MCP HTTP drain window.
const exitGrace = 8 * time.Second

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the in-flight request on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	finished := make(chan struct{})
	defer close(finished)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cancelling request...")
			cancel()
		case <-finished:
			return
		}

		select {
		case <-finished:
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "Warning: Interrupted again, forcing exit")
			os.Exit(130)
		case <-time.After(exitGrace):
			fmt.Fprintln(os.Stderr, "Warning: Shutdown timed out, forcing exit")
			os.Exit(130)
		}
	}()

	defer func() {
		if err := internal.CloseActivityLog(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to close activity log: %v\n", err)
		}
	}()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	internal.AddAudioFlag(rootCmd)
	internal.AddOutputFlag(rootCmd)
	internal.AddCredentialFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status messages and progress bars")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/azreco/config.toml)")
	rootCmd.PersistentFlags().String("base-url", "", "Transcription service URL (default from config)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Request timeout, e.g. 5m (default from config)")
}
