package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// AddAudioFlag adds the required --audio flag
func AddAudioFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("audio", "a", "", "Audio file or video link (YouTube, Facebook, Dailymotion, Twitter) to be processed")
}

// AddCredentialFlags adds flags for the account id, token and language
func AddCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("id", "i", "", "Your transcriber API ID (default from config or AZRECO_API_ID)")
	cmd.Flags().StringP("token", "k", "", "Your transcriber API token (default from config or AZRECO_API_TOKEN)")
	cmd.Flags().StringP("lang", "l", "", "Code of language to use (e.g., en-US, ru-RU, tr-TR)")
}

// AddOutputFlag adds the --output flag
func AddOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output filename (will print to terminal if not specified)")
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	if flag := cmd.Flags().Lookup("verbose"); flag != nil && flag.Changed {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		config.Verbose = verbose
	}
	if flag := cmd.Flags().Lookup("quiet"); flag != nil && flag.Changed {
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		config.Quiet = quiet
	}
	if config.Quiet {
		config.Verbose = false
	}
	return nil
}

// HandleServiceFlags applies --base-url and --timeout overrides to config
func HandleServiceFlags(cmd *cobra.Command, config *Config) error {
	if flag := cmd.Flags().Lookup("base-url"); flag != nil && flag.Changed {
		config.BaseURL = flag.Value.String()
	}
	if flag := cmd.Flags().Lookup("timeout"); flag != nil && flag.Changed {
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return fmt.Errorf("failed to get timeout flag: %w", err)
		}
		config.Timeout = timeout
	}
	return nil
}

// ParseAccountID converts the account identifier to the integer the service expects
func ParseAccountID(id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, fmt.Errorf("API ID is required - pass --id, set api_id in config.toml or AZRECO_API_ID")
	}
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("API ID must be a positive integer, got %q", id)
	}
	return n, nil
}

// BuildRequest merges flags over config and classifies the audio argument
func BuildRequest(cmd *cobra.Command, config *Config) (TranscriptionRequest, error) {
	audio, _ := cmd.Flags().GetString("audio")
	if strings.TrimSpace(audio) == "" {
		return TranscriptionRequest{}, fmt.Errorf("audio file or video link is required (--audio)")
	}

	id := flagOrDefault(cmd, "id", config.APIID)
	token := flagOrDefault(cmd, "token", config.APIToken)
	lang := flagOrDefault(cmd, "lang", config.Lang)

	accountID, err := ParseAccountID(id)
	if err != nil {
		return TranscriptionRequest{}, err
	}
	if strings.TrimSpace(token) == "" {
		return TranscriptionRequest{}, fmt.Errorf("API token is required - pass --token, set api_token in config.toml or AZRECO_API_TOKEN")
	}

	req := TranscriptionRequest{
		AccountID: accountID,
		APIToken:  strings.TrimSpace(token),
		Language:  strings.TrimSpace(lang),
		Source:    Classify(audio),
	}
	if err := req.Validate(); err != nil {
		return TranscriptionRequest{}, err
	}
	return req, nil
}

func flagOrDefault(cmd *cobra.Command, name, fallback string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return fallback
	}
	return flag.Value.String()
}
