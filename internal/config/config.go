package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`
	Contact ContactConfig `yaml:"contact" json:"contact"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// ServiceConfig configures the Document Service client
type ServiceConfig struct {
	BaseURL       string        `yaml:"base_url" json:"base_url"`             // Document Service root
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`               // per-request deadline
	HealthTimeout time.Duration `yaml:"health_timeout" json:"health_timeout"` // health probe deadline
	CacheTTL      time.Duration `yaml:"cache_ttl" json:"cache_ttl"`           // 0 disables the summary cache
}

// AuthConfig configures account gating and the identity provider
type AuthConfig struct {
	Required        bool          `yaml:"required" json:"required"`
	APIKey          string        `yaml:"api_key" json:"-"`
	IdentityURL     string        `yaml:"identity_url" json:"identity_url"`
	TokenURL        string        `yaml:"token_url" json:"token_url"`
	CredentialsPath string        `yaml:"credentials_path" json:"credentials_path"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
}

// ContactConfig configures contact form delivery
type ContactConfig struct {
	Provider string        `yaml:"provider" json:"provider"` // emailjs|smtp
	ToEmail  string        `yaml:"to_email" json:"to_email"`
	EmailJS  EmailJSConfig `yaml:"emailjs" json:"emailjs"`
	SMTP     SMTPConfig    `yaml:"smtp" json:"smtp"`
}

// EmailJSConfig holds EmailJS REST API credentials
type EmailJSConfig struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	ServiceID   string `yaml:"service_id" json:"service_id"`
	TemplateID  string `yaml:"template_id" json:"template_id"`
	PublicKey   string `yaml:"public_key" json:"public_key"`
	AccessToken string `yaml:"access_token" json:"-"`
}

// SMTPConfig holds SMTP relay settings
type SMTPConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	From     string `yaml:"from" json:"from"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// UIConfig configures the terminal UI
type UIConfig struct {
	Theme string `yaml:"theme" json:"theme"`
}

// LogConfig configures the log file sink
type LogConfig struct {
	File       string `yaml:"file" json:"file"`
	Level      string `yaml:"level" json:"level"` // debug|info|warn|error
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
}

// ServerConfig configures the landing site server
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			BaseURL:       "http://localhost:8000",
			Timeout:       120 * time.Second,
			HealthTimeout: 5 * time.Second,
			CacheTTL:      10 * time.Minute,
		},
		Auth: AuthConfig{
			Required:        true,
			IdentityURL:     "https://identitytoolkit.googleapis.com/v1",
			TokenURL:        "https://securetoken.googleapis.com/v1",
			CredentialsPath: "~/.config/docsum/credentials.json",
			Timeout:         15 * time.Second,
		},
		Contact: ContactConfig{
			Provider: "emailjs",
			EmailJS: EmailJSConfig{
				Endpoint: "https://api.emailjs.com/api/v1.0/email/send",
			},
			SMTP: SMTPConfig{
				Port: 587,
			},
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
		UI: UIConfig{
			Theme: "default",
		},
		Log: LogConfig{
			File:       "~/.cache/docsum/docsum.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    150 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateAuthConfig(); err != nil {
		return err
	}
	if err := c.validateContactConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateLogConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServiceConfig() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid service base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid service base_url: %q (must be an http or https URL)", c.Service.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid service base_url: %q (missing host)", c.Service.BaseURL)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service timeout must be positive")
	}
	if c.Service.HealthTimeout <= 0 {
		return fmt.Errorf("service health_timeout must be positive")
	}
	if c.Service.CacheTTL < 0 {
		return fmt.Errorf("service cache_ttl must be non-negative")
	}
	return nil
}

func (c *Config) validateAuthConfig() error {
	if c.Auth.CredentialsPath == "" {
		return fmt.Errorf("auth credentials_path is required")
	}
	if c.Auth.Timeout <= 0 {
		return fmt.Errorf("auth timeout must be positive")
	}
	return nil
}

func (c *Config) validateContactConfig() error {
	switch c.Contact.Provider {
	case "", "emailjs":
	case "smtp":
		if c.Contact.SMTP.Port < 0 || c.Contact.SMTP.Port > 65535 {
			return fmt.Errorf("invalid smtp port: %d", c.Contact.SMTP.Port)
		}
	default:
		return fmt.Errorf("invalid contact provider: %s (must be one of: emailjs, smtp)", c.Contact.Provider)
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Level != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[c.Log.Level] {
			return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Log.Level)
		}
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must be non-negative")
	}
	return nil
}

// ValidThemes lists the terminal UI themes
var ValidThemes = []string{"default", "high-contrast", "minimal"}

func (c *Config) validateUIConfig() error {
	if c.UI.Theme == "" {
		return nil
	}
	for _, theme := range ValidThemes {
		if c.UI.Theme == theme {
			return nil
		}
	}
	return fmt.Errorf("invalid ui theme: %s (must be one of: %s)", c.UI.Theme, strings.Join(ValidThemes, ", "))
}
