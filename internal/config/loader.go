package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.docsum.yaml",               // Project-specific config (highest priority)
	"~/.config/docsum/config.yaml", // User config
	"/etc/docsum/config.yaml",      // System config (lowest priority)
}

// EnvFiles are dotenv files read before environment overrides are applied
var EnvFiles = []string{".env"}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	envFiles    []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		envFiles:    EnvFiles,
	}
}

// WithEnvFiles replaces the dotenv files the loader reads
func (l *Loader) WithEnvFiles(files ...string) *Loader {
	l.envFiles = files
	return l
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables (including those set by .env)
// 3. ./.docsum.yaml
// 4. ~/.config/docsum/config.yaml
// 5. /etc/docsum/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := ExpandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	l.loadEnvFiles()

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file on top of the existing config.
// Keys absent from the file keep their current values.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadEnvFiles populates the process environment from dotenv files.
// Variables already present in the environment are not overwritten.
func (l *Loader) loadEnvFiles() {
	for _, file := range l.envFiles {
		if !fileExists(file) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load env file %s: %v\n", file, err)
		}
	}
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Service Config
		"DOCSUM_SERVICE_BASE_URL":       func(v string) error { config.Service.BaseURL = v; return nil },
		"DOCSUM_SERVICE_TIMEOUT":        func(v string) error { return parseDuration(v, &config.Service.Timeout) },
		"DOCSUM_SERVICE_HEALTH_TIMEOUT": func(v string) error { return parseDuration(v, &config.Service.HealthTimeout) },
		"DOCSUM_SERVICE_CACHE_TTL":      func(v string) error { return parseDuration(v, &config.Service.CacheTTL) },

		// Auth Config
		"DOCSUM_AUTH_REQUIRED":         func(v string) error { return parseBool(v, &config.Auth.Required) },
		"DOCSUM_AUTH_API_KEY":          func(v string) error { config.Auth.APIKey = v; return nil },
		"DOCSUM_AUTH_IDENTITY_URL":     func(v string) error { config.Auth.IdentityURL = v; return nil },
		"DOCSUM_AUTH_TOKEN_URL":        func(v string) error { config.Auth.TokenURL = v; return nil },
		"DOCSUM_AUTH_CREDENTIALS_PATH": func(v string) error { config.Auth.CredentialsPath = v; return nil },
		"DOCSUM_AUTH_TIMEOUT":          func(v string) error { return parseDuration(v, &config.Auth.Timeout) },

		// Contact Config
		"DOCSUM_CONTACT_PROVIDER":             func(v string) error { config.Contact.Provider = v; return nil },
		"DOCSUM_CONTACT_TO_EMAIL":             func(v string) error { config.Contact.ToEmail = v; return nil },
		"DOCSUM_CONTACT_EMAILJS_ENDPOINT":     func(v string) error { config.Contact.EmailJS.Endpoint = v; return nil },
		"DOCSUM_CONTACT_EMAILJS_SERVICE_ID":   func(v string) error { config.Contact.EmailJS.ServiceID = v; return nil },
		"DOCSUM_CONTACT_EMAILJS_TEMPLATE_ID":  func(v string) error { config.Contact.EmailJS.TemplateID = v; return nil },
		"DOCSUM_CONTACT_EMAILJS_PUBLIC_KEY":   func(v string) error { config.Contact.EmailJS.PublicKey = v; return nil },
		"DOCSUM_CONTACT_EMAILJS_ACCESS_TOKEN": func(v string) error { config.Contact.EmailJS.AccessToken = v; return nil },
		"DOCSUM_CONTACT_SMTP_HOST":            func(v string) error { config.Contact.SMTP.Host = v; return nil },
		"DOCSUM_CONTACT_SMTP_PORT":            func(v string) error { return parseInt(v, &config.Contact.SMTP.Port) },
		"DOCSUM_CONTACT_SMTP_USERNAME":        func(v string) error { config.Contact.SMTP.Username = v; return nil },
		"DOCSUM_CONTACT_SMTP_PASSWORD":        func(v string) error { config.Contact.SMTP.Password = v; return nil },
		"DOCSUM_CONTACT_SMTP_FROM":            func(v string) error { config.Contact.SMTP.From = v; return nil },

		// Output Config
		"DOCSUM_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"DOCSUM_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"DOCSUM_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },

		// UI Config
		"DOCSUM_UI_THEME": func(v string) error { config.UI.Theme = v; return nil },

		// Log Config
		"DOCSUM_LOG_FILE":         func(v string) error { config.Log.File = v; return nil },
		"DOCSUM_LOG_LEVEL":        func(v string) error { config.Log.Level = v; return nil },
		"DOCSUM_LOG_MAX_SIZE_MB":  func(v string) error { return parseInt(v, &config.Log.MaxSizeMB) },
		"DOCSUM_LOG_MAX_BACKUPS":  func(v string) error { return parseInt(v, &config.Log.MaxBackups) },
		"DOCSUM_LOG_MAX_AGE_DAYS": func(v string) error { return parseInt(v, &config.Log.MaxAgeDays) },

		// Server Config
		"DOCSUM_SERVER_ADDR":             func(v string) error { config.Server.Addr = v; return nil },
		"DOCSUM_SERVER_READ_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Server.ReadTimeout) },
		"DOCSUM_SERVER_WRITE_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Server.WriteTimeout) },
		"DOCSUM_SERVER_SHUTDOWN_TIMEOUT": func(v string) error { return parseDuration(v, &config.Server.ShutdownTimeout) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(strings.TrimSpace(value)); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, ExpandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := ExpandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
