// ABOUTME: Configuration loading and parsing for mcpd
// ABOUTME: Supports YAML files with environment variable expansion plus MCP_* env overrides

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete mcpd configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds server address configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// PublicURL is the externally visible base URL of the server.
	// Used to build the canonical resource URL in discovery metadata.
	// If not set, it is derived from host and port.
	PublicURL string `yaml:"public_url"`
}

// AuthConfig holds bearer token authentication configuration.
type AuthConfig struct {
	// Token is the static bearer secret. A missing token is not a load
	// error: the server starts and rejects MCP requests with 500 until
	// the operator provides one.
	Token          string   `yaml:"token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// OAuthConfig holds protected-resource discovery metadata configuration.
type OAuthConfig struct {
	AuthorizationServers  []string `yaml:"authorization_servers"`
	RequiredScope         string   `yaml:"required_scope"`
	ResourceDocumentation string   `yaml:"resource_documentation"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path, expands ${VAR}
// references, applies environment overrides, and validates the result.
// An empty path skips the file and builds the config from defaults and
// environment variables alone.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expandedData := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config with baseline values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnv overlays the environment variables from the deployment
// contract on top of file-sourced values. Environment always wins so a
// container can override a baked-in config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("MCP_AUTH_TOKEN"); v != "" {
		cfg.Auth.Token = strings.TrimSpace(v)
	}
	if v := os.Getenv("MCP_ALLOWED_ORIGINS"); v != "" {
		cfg.Auth.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MCP_AUTHORIZATION_SERVERS"); v != "" {
		cfg.OAuth.AuthorizationServers = splitList(v)
	}
	if v := os.Getenv("MCP_REQUIRED_SCOPE"); v != "" {
		cfg.OAuth.RequiredScope = v
	}
	if v := os.Getenv("MCP_RESOURCE_DOCUMENTATION"); v != "" {
		cfg.OAuth.ResourceDocumentation = v
	}
}

// splitList parses a comma-separated environment value into a slice,
// trimming whitespace and dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Addr returns the host:port bind address for the HTTP listener.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// BaseURL returns the externally visible base URL, without a trailing slash.
func (c *Config) BaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://" + c.Addr()
}

// ResourceURL returns the canonical URL of the MCP endpoint.
func (c *Config) ResourceURL() string {
	return c.BaseURL() + "/mcp"
}

// ResourceMetadataURL returns the URL of the resource-scoped discovery document.
// Referenced from the WWW-Authenticate challenge on 401 responses.
func (c *Config) ResourceMetadataURL() string {
	return c.BaseURL() + "/.well-known/oauth-protected-resource/mcp"
}

// Validate checks that all present configuration fields are well formed.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	if c.Server.PublicURL != "" {
		if err := checkURL(c.Server.PublicURL); err != nil {
			return fmt.Errorf("server.public_url: %w", err)
		}
	}

	for _, s := range c.OAuth.AuthorizationServers {
		if err := checkURL(s); err != nil {
			return fmt.Errorf("oauth.authorization_servers entry %q: %w", s, err)
		}
	}

	if c.OAuth.ResourceDocumentation != "" {
		if err := checkURL(c.OAuth.ResourceDocumentation); err != nil {
			return fmt.Errorf("oauth.resource_documentation: %w", err)
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", c.Logging.Format)
	}

	return nil
}

// checkURL verifies a string is an absolute http(s) URL.
func checkURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
