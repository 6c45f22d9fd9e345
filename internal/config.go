package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	BaseURL     string
	APIID       string
	APIToken    string
	Lang        string
	Timeout     time.Duration
	Verbose     bool
	Quiet       bool
	KeepHistory bool
	LogEnabled  bool

	// Fixed XDG paths (not configurable)
	ConfigDir      string
	DataDir        string
	CacheDir       string
	TranscriptsDir string
	LogFile        string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	// may hold the API token
	if err := os.WriteFile(filePath, defaultContent, 0600); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// DefaultConfigDir is where config.toml is looked up and created
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "azreco")
}

// InitConfig initializes Viper and loads configuration.
// An explicit configFile takes precedence over the XDG search paths.
func InitConfig(configFile string) *Config {
	configDir := DefaultConfigDir()
	dataDir := filepath.Join(xdg.DataHome, "azreco")
	cacheDir := filepath.Join(xdg.CacheHome, "azreco")

	v := newViper(configDir, configFile)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := configFromViper(v)
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir
	config.TranscriptsDir = filepath.Join(dataDir, "transcripts")
	config.LogFile = filepath.Join(cacheDir, "azreco.log")

	if config.Verbose && v.ConfigFileUsed() != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

func newViper(configDir, configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("api_id", "")
	v.SetDefault("api_token", "")
	v.SetDefault("lang", "")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("keep_history", false)
	v.SetDefault("log_enabled", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AZRECO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

func configFromViper(v *viper.Viper) *Config {
	return &Config{
		BaseURL:     v.GetString("base_url"),
		APIID:       v.GetString("api_id"),
		APIToken:    v.GetString("api_token"),
		Lang:        v.GetString("lang"),
		Timeout:     v.GetDuration("timeout"),
		Verbose:     v.GetBool("verbose"),
		Quiet:       v.GetBool("quiet"),
		KeepHistory: v.GetBool("keep_history"),
		LogEnabled:  v.GetBool("log_enabled"),
	}
}
