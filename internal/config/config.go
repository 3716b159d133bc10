package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all configuration for the application. It is assembled once at
// process start (flags plus environment) and passed explicitly to every
// component constructor; nothing re-reads the environment afterwards.
type Config struct {
	Database DatabaseConfig
	LLM      LLMConfig
	Agent    AgentConfig
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	Path                           string // duckdb database file
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
	QueryTimeout                   time.Duration
}

// LLMConfig holds the text-generation backend configuration. An empty Model
// leaves the agent without a backend; fixed queries and schema inspection
// still work in that state.
type LLMConfig struct {
	Backend        string // "openai" (Ollama and compatible servers) or "gemini"
	Model          string
	BaseURL        string
	APIKey         string
	Temperature    float32
	MaxTokens      int
	RequestTimeout time.Duration
}

// AgentConfig holds the agent scoping: one table, one selected column.
type AgentConfig struct {
	Table          string
	Column         string
	ContextColumns []string // columns whose full distinct-value sets go into the prompt
	MaxResults     int
	SampleLimit    int
	DomainContext  string
}

const (
	DefaultMaxResults     = 10
	DefaultSampleLimit    = 3
	DefaultQueryTimeout   = 30 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxTokens      = 4000
)

// Default returns a configuration seeded with the defaults that flags and
// environment variables override in cmd.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:      "postgres",
			Host:         "localhost",
			Port:         5432,
			SSLMode:      "disable",
			QueryTimeout: DefaultQueryTimeout,
		},
		LLM: LLMConfig{
			Backend:        "openai",
			BaseURL:        "http://localhost:11434/v1",
			Temperature:    0,
			MaxTokens:      DefaultMaxTokens,
			RequestTimeout: DefaultRequestTimeout,
		},
		Agent: AgentConfig{
			MaxResults:  DefaultMaxResults,
			SampleLimit: DefaultSampleLimit,
		},
	}
}

// Validate checks that every required setting is present, collecting all
// missing names so the user fixes them in one round trip. A Config that does
// not validate must never reach an agent constructor.
func (c *Config) Validate() error {
	var missing []string

	switch c.Database.Dialect {
	case "duckdb":
		if c.Database.Path == "" {
			missing = append(missing, "db-path")
		}
	case "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver":
		if c.Database.CloudSQLInstanceConnectionName == "" {
			missing = append(missing, "cloudsql-instance-connection-name")
		}
		missing = append(missing, c.missingCredentials()...)
	case "postgres", "mysql", "sqlserver":
		if c.Database.Host == "" {
			missing = append(missing, "host")
		}
		if c.Database.Port == 0 {
			missing = append(missing, "port")
		}
		missing = append(missing, c.missingCredentials()...)
	case "":
		missing = append(missing, "dialect")
	default:
		return fmt.Errorf("unsupported database dialect: %s", c.Database.Dialect)
	}

	if c.Agent.Table == "" {
		missing = append(missing, "table")
	}
	if c.Agent.Column == "" {
		missing = append(missing, "column")
	}
	if c.LLM.Backend == "gemini" && c.LLM.Model != "" && c.LLM.APIKey == "" {
		missing = append(missing, "api-key")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) missingCredentials() []string {
	var missing []string
	if c.Database.User == "" {
		missing = append(missing, "username")
	}
	if c.Database.Password == "" {
		missing = append(missing, "password")
	}
	if c.Database.DBName == "" {
		missing = append(missing, "database")
	}
	return missing
}

// HasBackend reports whether a text-generation model is configured.
func (c *Config) HasBackend() bool {
	return c.LLM.Model != ""
}
