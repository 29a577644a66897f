// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the main configuration structure for loki.
type Config struct {
	Completion CompletionConfig `toml:"completion" json:"completion" yaml:"completion"`
	Auth       AuthConfig       `toml:"auth" json:"auth" yaml:"auth"`
	UI         UIConfig         `toml:"ui" json:"ui" yaml:"ui"`
	Profile    ProfileConfig    `toml:"profile" json:"profile" yaml:"profile"`
	Logging    LoggingConfig    `toml:"logging" json:"logging" yaml:"logging"`
}

// History modes for completion requests.
const (
	HistorySingle = "single" // latest user message only
	HistoryFull   = "full"   // whole conversation, trimmed to a token budget
)

// CompletionConfig controls the remote chat completion endpoint.
type CompletionConfig struct {
	// BaseURL of an OpenAI-compatible API, including the /v1 suffix
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`

	// APIKey is sent as a bearer token. Prefer LOKI_API_KEY over storing it here.
	APIKey string `toml:"api_key" json:"api_key" yaml:"api_key"`

	Model     string `toml:"model" json:"model" yaml:"model"`
	MaxTokens int    `toml:"max_tokens" json:"max_tokens" yaml:"max_tokens"`

	// TimeoutSecs bounds each request, retries included
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
	MaxRetries  int `toml:"max_retries" json:"max_retries" yaml:"max_retries"`

	// RequestsPerMinute paces outbound requests client-side (0 = unlimited)
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute" yaml:"requests_per_minute"`

	// HistoryMode is "single" or "full"
	HistoryMode        string `toml:"history_mode" json:"history_mode" yaml:"history_mode"`
	HistoryTokenBudget int    `toml:"history_token_budget" json:"history_token_budget" yaml:"history_token_budget"`
}

// Auth providers.
const (
	AuthLocal    = "local"
	AuthSupabase = "supabase"
	AuthNone     = "none"
)

// AuthConfig selects the sign-in backend.
type AuthConfig struct {
	Provider        string `toml:"provider" json:"provider" yaml:"provider"`
	SupabaseURL     string `toml:"supabase_url" json:"supabase_url" yaml:"supabase_url"`
	SupabaseAnonKey string `toml:"supabase_anon_key" json:"supabase_anon_key" yaml:"supabase_anon_key"`

	// MaxAttempts consecutive failures lock an email for LockoutMinutes
	MaxAttempts    int `toml:"max_attempts" json:"max_attempts" yaml:"max_attempts"`
	LockoutMinutes int `toml:"lockout_minutes" json:"lockout_minutes" yaml:"lockout_minutes"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" json:"theme" yaml:"theme"`

	// RevealIntervalMs is the typing effect period per character
	RevealIntervalMs int `toml:"reveal_interval_ms" json:"reveal_interval_ms" yaml:"reveal_interval_ms"`

	// StartRoute is the first screen: "/", "/login" or "/chat"
	StartRoute string `toml:"start_route" json:"start_route" yaml:"start_route"`

	// MarkdownStyle is a glamour style name or "auto"
	MarkdownStyle string `toml:"markdown_style" json:"markdown_style" yaml:"markdown_style"`

	// Greeting seeds every new conversation
	Greeting string `toml:"greeting" json:"greeting" yaml:"greeting"`
}

// ProfileConfig holds the initial profile values.
type ProfileConfig struct {
	Name   string `toml:"name" json:"name" yaml:"name"`
	Email  string `toml:"email" json:"email" yaml:"email"`
	Avatar string `toml:"avatar" json:"avatar" yaml:"avatar"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level string `toml:"level" json:"level" yaml:"level"`

	// File receives log output; "-" means stderr. Empty means ~/.loki/loki.log.
	File string `toml:"file" json:"file" yaml:"file"`
}

// =============================================================================
// DEFAULT CONFIG
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			BaseURL:            "https://api.openai.com/v1",
			Model:              model.DefaultModel,
			MaxTokens:          100,
			TimeoutSecs:        30,
			MaxRetries:         2,
			RequestsPerMinute:  20,
			HistoryMode:        HistorySingle,
			HistoryTokenBudget: 3000,
		},
		Auth: AuthConfig{
			Provider:       AuthLocal,
			MaxAttempts:    3,
			LockoutMinutes: 15,
		},
		UI: UIConfig{
			Theme:            "dark",
			RevealIntervalMs: 10,
			StartRoute:       "/",
			MarkdownStyle:    "auto",
			Greeting:         model.DefaultGreeting,
		},
		Profile: ProfileConfig{
			Name:  model.DefaultProfileName,
			Email: model.DefaultProfileEmail,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the loki configuration directory. LOKI_HOME overrides
// the default of ~/.loki.
func ConfigDir() (string, error) {
	if dir := os.Getenv("LOKI_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".loki"), nil
}

// ConfigPaths returns the candidate config files in lookup order.
func ConfigPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.json"),
	}, nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolvePath returns the first existing config file, or "" when none exist.
func ResolvePath() string {
	paths, err := ConfigPaths()
	if err != nil {
		return ""
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ensureSecurePermissions tightens config files to 0600 since they may
// hold API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return errors.Wrapf(err, "fix insecure permissions (was %o)", mode)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads .env from the working directory and the config directory.
// Variables already set in the environment win.
func LoadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("could not load env file")
		}
	}
}

// Load finds the first config file in ConfigPaths, falling back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path := ResolvePath(); path != "" {
		return LoadFromPath(path)
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadFromPath loads the file at path, picking the decoder from its
// extension. TOML is the default.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "load config from %s", path)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not ensure secure permissions")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(err, "decode JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(err, "decode YAML")
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return errors.Wrap(err, "decode TOML")
		}
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path with 0600 permissions. The API key is never
// written; it belongs in the environment.
func SaveTOML(cfg *Config, path string) error {
	out := cfg.Clone()
	out.Completion.APIKey = ""

	var buf bytes.Buffer
	buf.WriteString("# loki configuration file\n")
	buf.WriteString("# Secrets belong in LOKI_API_KEY and SUPABASE_ANON_KEY, not here.\n\n")
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return errors.Wrap(err, "encode config")
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Completion
	if u, err := url.Parse(c.Completion.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "completion.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[/path]", c.Completion.BaseURL),
		})
	}
	if strings.TrimSpace(c.Completion.Model) == "" {
		errs = append(errs, ValidationError{Field: "completion.model", Message: "must not be empty"})
	}
	if c.Completion.MaxTokens < 1 || c.Completion.MaxTokens > 32768 {
		errs = append(errs, ValidationError{
			Field:   "completion.max_tokens",
			Message: fmt.Sprintf("must be between 1 and 32768, got %d", c.Completion.MaxTokens),
		})
	}
	if c.Completion.TimeoutSecs < 1 || c.Completion.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "completion.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Completion.TimeoutSecs),
		})
	}
	if c.Completion.MaxRetries < 0 || c.Completion.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "completion.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.Completion.MaxRetries),
		})
	}
	if c.Completion.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "completion.requests_per_minute", Message: "must not be negative"})
	}
	switch strings.ToLower(c.Completion.HistoryMode) {
	case HistorySingle, HistoryFull:
	default:
		errs = append(errs, ValidationError{
			Field:   "completion.history_mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: single, full", c.Completion.HistoryMode),
		})
	}
	if c.Completion.HistoryTokenBudget < 1 {
		errs = append(errs, ValidationError{Field: "completion.history_token_budget", Message: "must be positive"})
	}

	// Auth
	switch strings.ToLower(c.Auth.Provider) {
	case AuthLocal, AuthNone:
	case AuthSupabase:
		if c.Auth.SupabaseURL == "" {
			errs = append(errs, ValidationError{Field: "auth.supabase_url", Message: "required when provider is supabase"})
		}
		if c.Auth.SupabaseAnonKey == "" {
			errs = append(errs, ValidationError{Field: "auth.supabase_anon_key", Message: "required when provider is supabase"})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "auth.provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: local, supabase, none", c.Auth.Provider),
		})
	}
	if c.Auth.MaxAttempts < 1 {
		errs = append(errs, ValidationError{Field: "auth.max_attempts", Message: "must be at least 1"})
	}
	if c.Auth.LockoutMinutes < 0 {
		errs = append(errs, ValidationError{Field: "auth.lockout_minutes", Message: "must not be negative"})
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.RevealIntervalMs < 1 || c.UI.RevealIntervalMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "ui.reveal_interval_ms",
			Message: fmt.Sprintf("must be between 1 and 1000, got %d", c.UI.RevealIntervalMs),
		})
	}
	switch c.UI.StartRoute {
	case "/", "/login", "/chat":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.start_route",
			Message: fmt.Sprintf("unknown route '%s', must be one of: /, /login, /chat", c.UI.StartRoute),
		})
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults and normalises enum casing.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = d.Completion.BaseURL
	}
	c.Completion.BaseURL = strings.TrimRight(c.Completion.BaseURL, "/")
	if c.Completion.Model == "" {
		c.Completion.Model = d.Completion.Model
	}
	if c.Completion.MaxTokens == 0 {
		c.Completion.MaxTokens = d.Completion.MaxTokens
	}
	if c.Completion.TimeoutSecs == 0 {
		c.Completion.TimeoutSecs = d.Completion.TimeoutSecs
	}
	if c.Completion.HistoryMode == "" {
		c.Completion.HistoryMode = d.Completion.HistoryMode
	}
	c.Completion.HistoryMode = strings.ToLower(c.Completion.HistoryMode)
	if c.Completion.HistoryTokenBudget == 0 {
		c.Completion.HistoryTokenBudget = d.Completion.HistoryTokenBudget
	}

	if c.Auth.Provider == "" {
		c.Auth.Provider = d.Auth.Provider
	}
	c.Auth.Provider = strings.ToLower(c.Auth.Provider)
	if c.Auth.MaxAttempts == 0 {
		c.Auth.MaxAttempts = d.Auth.MaxAttempts
	}

	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	if c.UI.RevealIntervalMs == 0 {
		c.UI.RevealIntervalMs = d.UI.RevealIntervalMs
	}
	if c.UI.StartRoute == "" {
		c.UI.StartRoute = d.UI.StartRoute
	}
	if c.UI.MarkdownStyle == "" {
		c.UI.MarkdownStyle = d.UI.MarkdownStyle
	}

	if c.Profile.Name == "" {
		c.Profile.Name = d.Profile.Name
	}
	if c.Profile.Email == "" {
		c.Profile.Email = d.Profile.Email
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LOKI_API_KEY: completion.api_key (OPENAI_API_KEY is used when unset)
//   - LOKI_MODEL: completion.model
//   - LOKI_BASE_URL: completion.base_url
//   - LOKI_HISTORY_MODE: completion.history_mode
//   - LOKI_THEME: ui.theme
//   - LOKI_AUTH_PROVIDER: auth.provider
//   - SUPABASE_URL, SUPABASE_ANON_KEY: auth.supabase_url, auth.supabase_anon_key
//   - LOKI_LOG_LEVEL: logging.level
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("LOKI_API_KEY"); key != "" {
		c.Completion.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Completion.APIKey == "" {
		c.Completion.APIKey = key
	}
	if v := os.Getenv("LOKI_MODEL"); v != "" {
		c.Completion.Model = v
	}
	if v := os.Getenv("LOKI_BASE_URL"); v != "" {
		c.Completion.BaseURL = v
	}
	if v := os.Getenv("LOKI_HISTORY_MODE"); v != "" {
		c.Completion.HistoryMode = v
	}
	if v := os.Getenv("LOKI_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("LOKI_AUTH_PROVIDER"); v != "" {
		c.Auth.Provider = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		c.Auth.SupabaseURL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		c.Auth.SupabaseAnonKey = v
	}
	if v := os.Getenv("LOKI_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation matching the file
// keys, e.g. "completion.history_mode".
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, errors.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, errors.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return nil, errors.Errorf("invalid key: %s", key)
}

// fieldByTag finds the struct field whose toml tag equals name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if strings.EqualFold(tag, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON rendering with secrets masked.
func (c *Config) String() string {
	safe := c.Clone()
	safe.Completion.APIKey = util.MaskSecret(safe.Completion.APIKey)
	safe.Auth.SupabaseAnonKey = util.MaskSecret(safe.Auth.SupabaseAnonKey)

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Load failures fall back to defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Warn().Err(err).Msg("using default config")
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
