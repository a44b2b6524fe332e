package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config represents the skill configuration
type Config struct {
	Jira    JiraConfig    `yaml:"jira"`
	Support SupportConfig `yaml:"support"`
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Display DisplayConfig `yaml:"display"`
}

// JiraConfig represents JIRA API configuration
type JiraConfig struct {
	BaseURL    string `yaml:"base_url"`
	Username   string `yaml:"username"`
	APIToken   string `yaml:"api_token"`
	ProjectKey string `yaml:"project_key"`
	IssueType  string `yaml:"issue_type"`
	Timeout    int    `yaml:"timeout_seconds"`
}

// SupportConfig holds the human contact details read out to users
type SupportConfig struct {
	Telephone string `yaml:"telephone"`
	Email     string `yaml:"email"`
}

// ServerConfig configures the HTTP intent webhook
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// LoggerConfig configures logging behavior
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// DisplayConfig controls how long text stays on the attached display
type DisplayConfig struct {
	SecondsPerLetter float64 `yaml:"seconds_per_letter"`
	LettersPerScreen float64 `yaml:"letters_per_screen"`
}

// Defaults for the Mark 1 style display.
const (
	DefaultSecondsPerLetter = 0.65
	DefaultLettersPerScreen = 9.0
)

// LoadConfig loads configuration from a YAML file and the environment.
// A missing file is not an error: the skill can be configured from the
// environment alone.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	_ = godotenv.Load()
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Jira.BaseURL, "JIRA_URL")
	overrideString(&c.Jira.Username, "JIRA_USERNAME")
	overrideString(&c.Jira.APIToken, "JIRA_PASSWORD")
	overrideString(&c.Jira.ProjectKey, "JIRA_PROJECT_KEY")
	overrideString(&c.Jira.IssueType, "JIRA_ISSUE_TYPE")
	overrideString(&c.Support.Telephone, "SUPPORT_TELEPHONE")
	overrideString(&c.Support.Email, "SUPPORT_EMAIL")
	overrideString(&c.Server.JWTSecret, "SKILL_JWT_SECRET")
	overrideString(&c.Server.Host, "SKILL_HOST")
	overrideString(&c.Logger.Level, "LOG_LEVEL")

	if port, ok := envInt("SKILL_PORT"); ok {
		c.Server.Port = port
	}
	if timeout, ok := envInt("JIRA_TIMEOUT_SECONDS"); ok {
		c.Jira.Timeout = timeout
	}
}

func (c *Config) applyDefaults() {
	if c.Jira.Timeout == 0 {
		c.Jira.Timeout = 30
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8086
	}
	if c.Server.TokenTTLMinutes == 0 {
		c.Server.TokenTTLMinutes = 60 * 24
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Display.SecondsPerLetter == 0 {
		c.Display.SecondsPerLetter = DefaultSecondsPerLetter
	}
	if c.Display.LettersPerScreen == 0 {
		c.Display.LettersPerScreen = DefaultLettersPerScreen
	}
}

// Validate validates the configuration. Missing JIRA credentials are not a
// validation failure; the skill reports them to the user when it tries to
// connect.
func (c *Config) Validate() error {
	if c.Jira.Timeout < 0 {
		return fmt.Errorf("JIRA timeout must not be negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}

	if c.Server.TokenTTLMinutes < 0 {
		return fmt.Errorf("token TTL must not be negative")
	}

	if c.Display.SecondsPerLetter < 0 || c.Display.LettersPerScreen < 0 {
		return fmt.Errorf("display timing must not be negative")
	}

	return nil
}

// ValidateServer checks the settings only the webhook needs
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.Server.JWTSecret) == "" {
		return fmt.Errorf("server JWT secret is required")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TokenTTL returns the lifetime of minted webhook tokens.
func (s ServerConfig) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

// RequestTimeout returns the JIRA HTTP client timeout.
func (j JiraConfig) RequestTimeout() time.Duration {
	return time.Duration(j.Timeout) * time.Second
}

// HoldDuration is how long text of the given length stays on the display.
func (d DisplayConfig) HoldDuration(letters int) time.Duration {
	seconds := (d.LettersPerScreen + float64(letters)) * d.SecondsPerLetter
	return time.Duration(seconds * float64(time.Second))
}

func overrideString(target *string, key string) {
	if val := os.Getenv(key); val != "" {
		*target = val
	}
}

func envInt(key string) (int, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
