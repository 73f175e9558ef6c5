// Package config handles configuration and persona management for gyanova.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
)

// Backends for the upstream generation call
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

// Environment variables that override the config file
const (
	EnvConfigDir = "GYANOVA_CONFIG_DIR"
	EnvAddr      = "GYANOVA_ADDR"
	EnvModel     = "GYANOVA_MODEL"
	EnvBackend   = "GYANOVA_BACKEND"
	EnvEndpoint  = "GYANOVA_ENDPOINT"
	EnvRelayURL  = "GYANOVA_RELAY_URL"
	EnvPersona   = "GYANOVA_PERSONA"
	EnvLogLevel  = "GYANOVA_LOG_LEVEL"
	EnvLogFormat = "GYANOVA_LOG_FORMAT"
	EnvLogFile   = "GYANOVA_LOG_FILE"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration.
// The API key is deliberately absent: it is read from the environment per request.
type Config struct {
	// Addr is the listen address of the relay server
	Addr string `json:"addr"`
	// Model is the upstream model name or alias
	Model string `json:"model"`
	// Backend selects how the relay calls Gemini: "rest" or "sdk"
	Backend string `json:"backend"`
	// Endpoint overrides the upstream base URL (empty means the public API)
	Endpoint string `json:"endpoint,omitempty"`
	// Persona names the preamble prepended to every question
	Persona string `json:"persona"`
	// RelayURL is where the chat and ask commands send questions
	RelayURL string `json:"relay_url"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	// LogFile, when set, sends logs to a rotated file instead of stderr
	LogFile string `json:"log_file,omitempty"`

	CopyToClipboard bool `json:"copy_to_clipboard"`
	// TUITheme names the color theme of the terminal chat
	TUITheme string         `json:"tui_theme,omitempty"`
	Markdown MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Model:           models.DefaultModel.Name,
		Backend:         BackendREST,
		Persona:         DefaultPersonaName,
		RelayURL:        "http://localhost:8080",
		LogLevel:        "info",
		LogFormat:       "text",
		CopyToClipboard: false,
		TUITheme:        "gyanova",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".gyanova"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// LoadFileConfig loads the configuration file over the defaults, without
// environment overrides. Use it when the result is written back with SaveConfig.
func LoadFileConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg, err := LoadFileConfig()
	cfg = ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overlays non-empty GYANOVA_* variables on cfg
func ApplyEnv(cfg Config) Config {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvAddr, &cfg.Addr},
		{EnvModel, &cfg.Model},
		{EnvBackend, &cfg.Backend},
		{EnvEndpoint, &cfg.Endpoint},
		{EnvRelayURL, &cfg.RelayURL},
		{EnvPersona, &cfg.Persona},
		{EnvLogLevel, &cfg.LogLevel},
		{EnvLogFormat, &cfg.LogFormat},
		{EnvLogFile, &cfg.LogFile},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
	return cfg
}

// Validate checks values that would otherwise fail late
func (c Config) Validate() error {
	switch c.Backend {
	case BackendREST, BackendSDK:
	default:
		return apierrors.NewConfigError("backend", fmt.Sprintf("unknown backend %q (want %s or %s)", c.Backend, BackendREST, BackendSDK))
	}
	if strings.TrimSpace(c.Addr) == "" {
		return apierrors.NewConfigError("addr", "listen address is empty")
	}
	return nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// APIKey returns the upstream credential from the environment, or ""
func APIKey() string {
	return strings.TrimSpace(os.Getenv(models.APIKeyEnv))
}

// RedactedKey describes the credential without revealing it
func RedactedKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "…" + key[len(key)-4:]
	}
}

// AvailableBackends returns the accepted backend names
func AvailableBackends() []string {
	return []string{BackendREST, BackendSDK}
}
