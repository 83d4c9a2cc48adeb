// Package config loads server configuration from the environment and ~/.evergreen.yml.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the public Evergreen GraphQL endpoint.
const DefaultEndpoint = "https://evergreen.mongodb.com/graphql/query"

// Config holds all configuration values.
type Config struct {
	// Evergreen API
	Endpoint    string
	User        string
	APIKey      string
	BearerToken string

	// Project hint sources
	DefaultProject       string
	WorkspaceDir         string
	ProjectsForDirectory map[string]string

	// Query behaviour
	QueryTimeout   time.Duration
	MaxConcurrency int

	// Logging
	LogFile  string
	LogLevel slog.Level

	// ConfigFile is the Evergreen CLI settings file that was read, if any.
	ConfigFile string
}

// Load reads configuration from environment variables, filling gaps from
// the Evergreen CLI settings file. Environment values always win.
func Load() Config {
	cfg := Config{
		Endpoint:       getEnv("EVERGREEN_URL", ""),
		User:           getEnv("EVERGREEN_USER", ""),
		APIKey:         getEnv("EVERGREEN_API_KEY", ""),
		BearerToken:    getEnv("EVERGREEN_TOKEN", ""),
		DefaultProject: getEnv("EVERGREEN_PROJECT", ""),
		WorkspaceDir:   workspaceDir(),

		QueryTimeout:   parseDuration(getEnv("EVERGREEN_QUERY_TIMEOUT", "30s"), 30*time.Second),
		MaxConcurrency: parseInt(getEnv("EVERGREEN_MAX_CONCURRENCY", "8"), 8),

		LogFile:  getEnv("EVERGREEN_MCP_LOG_FILE", filepath.Join(os.TempDir(), "evergreen-mcp.log")),
		LogLevel: parseLogLevel(getEnv("EVERGREEN_MCP_LOG_LEVEL", "INFO")),

		ConfigFile: getEnv("EVERGREEN_CONFIG", defaultConfigFile()),
	}

	if file, err := ReadEvergreenFile(cfg.ConfigFile); err == nil {
		cfg.applyFile(file)
	} else if !os.IsNotExist(err) {
		slog.Warn("failed to read evergreen config", "file", cfg.ConfigFile, "error", err)
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return cfg
}

// applyFile copies values from the settings file into fields the environment left empty.
func (c *Config) applyFile(f *EvergreenFile) {
	if c.User == "" {
		c.User = f.User
	}
	if c.APIKey == "" {
		c.APIKey = f.APIKey
	}
	if c.Endpoint == "" && f.APIServerHost != "" {
		c.Endpoint = GraphQLEndpoint(f.APIServerHost)
	}
	c.ProjectsForDirectory = f.ProjectsForDirectory
}

// UseBearer reports whether requests authenticate with a bearer token
// instead of the Api-User / Api-Key header pair.
func (c Config) UseBearer() bool {
	return c.BearerToken != ""
}

// HasCredentials reports whether some form of authentication is configured.
func (c Config) HasCredentials() bool {
	return c.BearerToken != "" || (c.User != "" && c.APIKey != "")
}

// ProjectHint returns the default project for the configured workspace.
// Priority: directory mapping > EVERGREEN_PROJECT > none.
func (c Config) ProjectHint() string {
	if p := DetectProject(c.ProjectsForDirectory, c.WorkspaceDir); p != "" {
		return p
	}
	return c.DefaultProject
}

// GraphQLEndpoint derives the GraphQL endpoint from an api_server_host value
// such as "https://evergreen.mongodb.com/api".
func GraphQLEndpoint(apiServerHost string) string {
	host := strings.TrimSuffix(strings.TrimSpace(apiServerHost), "/")
	host = strings.TrimSuffix(host, "/api")
	if host == "" {
		return ""
	}
	return host + "/graphql/query"
}

func workspaceDir() string {
	if dir := os.Getenv("WORKSPACE_PATH"); dir != "" {
		return dir
	}
	if dir := os.Getenv("PWD"); dir != "" {
		return dir
	}
	dir, _ := os.Getwd()
	return dir
}

func defaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evergreen.yml"
	}
	return filepath.Join(home, ".evergreen.yml")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
