// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/util"
)

// EnvPrefix is the prefix for environment overrides (TABCHAT_PROVIDER_BASE_URL, ...).
const EnvPrefix = "TABCHAT"

// CredentialEnv is the conventional environment variable holding the Groq key.
const CredentialEnv = "GROQ_API_KEY"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tabchat configuration.
type Config struct {
	Provider ProviderConfig `toml:"provider" mapstructure:"provider"`
	Model    ModelConfig    `toml:"model" mapstructure:"model"`
	Storage  StorageConfig  `toml:"storage" mapstructure:"storage"`
	UI       UIConfig       `toml:"ui" mapstructure:"ui"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`
}

// ProviderConfig contains completion provider settings.
type ProviderConfig struct {
	// API key; GROQ_API_KEY takes precedence when set
	APIKey string `toml:"api_key" mapstructure:"api_key"`
	// Base URL of the OpenAI-compatible API
	BaseURL string `toml:"base_url" mapstructure:"base_url"`
	// Request timeout in seconds (0 = client default)
	TimeoutSecs int `toml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ModelConfig contains model selection settings.
type ModelConfig struct {
	// Catalog id or 1-based number of the startup model; empty = catalog default
	Default string `toml:"default" mapstructure:"default"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Directory for generated and relative save names; empty = working directory
	SaveDir string `toml:"save_dir" mapstructure:"save_dir"`
	// SQLite save journal; empty disables it
	Journal string `toml:"journal" mapstructure:"journal"`
}

// UIConfig contains terminal settings.
type UIConfig struct {
	// Render replies and help as markdown
	Markdown bool `toml:"markdown" mapstructure:"markdown"`
	// Line editor history file; empty disables persistence
	HistoryFile string `toml:"history_file" mapstructure:"history_file"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Log file; empty discards logs
	File string `toml:"file" mapstructure:"file"`
	// debug, info, warn or error
	Level string `toml:"level" mapstructure:"level"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Default returns a Config with sensible default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".tabchat"
	}
	return &Config{
		Provider: ProviderConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: 60,
		},
		Storage: StorageConfig{
			Journal: filepath.Join(dir, "journal.db"),
		},
		UI: UIConfig{
			Markdown:    true,
			HistoryFile: filepath.Join(dir, "chat_history"),
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "tabchat.log"),
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the tabchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tabchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// LOAD
// =============================================================================

// FlagBindings maps config keys to the command-line flags that override them.
var FlagBindings = map[string]string{
	"model.default":    "model",
	"storage.save_dir": "save-dir",
}

// Load reads configuration with precedence flags > environment > file >
// defaults. An empty path means ConfigPathTOML; a missing file is not an
// error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPathTOML()
		if err != nil {
			return nil, err
		}
		path = p
	}

	def := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("provider.api_key", def.Provider.APIKey)
	v.SetDefault("provider.base_url", def.Provider.BaseURL)
	v.SetDefault("provider.timeout_secs", def.Provider.TimeoutSecs)
	v.SetDefault("model.default", def.Model.Default)
	v.SetDefault("storage.save_dir", def.Storage.SaveDir)
	v.SetDefault("storage.journal", def.Storage.Journal)
	v.SetDefault("ui.markdown", def.UI.Markdown)
	v.SetDefault("ui.history_file", def.UI.HistoryFile)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("provider.api_key", CredentialEnv, EnvPrefix+"_PROVIDER_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if flags != nil {
		for key, name := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{Key: "", Path: path, Message: fmt.Sprintf("failed to read config: %v", err)}
		}
		if explicit {
			return nil, &ConfigurationError{Path: path, Message: "config file not found"}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigurationError{Path: path, Message: fmt.Sprintf("failed to decode config: %v", err)}
	}

	cfg.Provider.APIKey = strings.TrimSpace(cfg.Provider.APIKey)
	cfg.Storage.SaveDir = ExpandPath(cfg.Storage.SaveDir)
	cfg.Storage.Journal = ExpandPath(cfg.Storage.Journal)
	cfg.UI.HistoryFile = ExpandPath(cfg.UI.HistoryFile)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	return &cfg, nil
}

// =============================================================================
// SAVE
// =============================================================================

// SaveTOML writes the configuration to path with 0600 permissions, since
// the file may hold an API key.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# tabchat configuration file")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintf(&buf, "# Prefer the %s environment variable over provider.api_key.\n", CredentialEnv)
	fmt.Fprintf(&buf, "# Any key can be overridden with %s_<SECTION>_<KEY>.\n", EnvPrefix)
	fmt.Fprintln(&buf)

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ConfigurationError reports configuration that prevents startup.
type ConfigurationError struct {
	Key     string
	Path    string
	Message string
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error")
	if e.Key != "" {
		sb.WriteString(" [" + e.Key + "]")
	}
	if e.Path != "" {
		sb.WriteString(" in " + e.Path)
	}
	sb.WriteString(": " + e.Message)
	return sb.String()
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks field values. The credential is checked separately by
// RequireCredential so that commands without network use can still run.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Provider.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "provider.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host/...", c.Provider.BaseURL),
		})
	}

	if c.Provider.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "provider.timeout_secs",
			Message: "timeout cannot be negative",
		})
	}

	if c.Model.Default != "" {
		if _, err := ResolveModel(catalog.Default(), c.Model.Default); err != nil {
			errs = append(errs, ValidationError{
				Field:   "model.default",
				Message: err.Error(),
			})
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequireCredential returns a *ConfigurationError when no API key is set.
func (c *Config) RequireCredential() error {
	if c.Provider.APIKey == "" {
		return &ConfigurationError{
			Key:     "provider.api_key",
			Message: fmt.Sprintf("no API key configured; set %s or provider.api_key in the config file", CredentialEnv),
		}
	}
	return nil
}

// ResolveModel picks a catalog entry by id or by 1-based number. An empty
// choice yields the catalog default.
func ResolveModel(reg *catalog.Registry, choice string) (catalog.Descriptor, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return reg.Default(), nil
	}
	if d, ok := reg.ByID(choice); ok {
		return d, nil
	}
	return reg.SelectString(choice)
}
