package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/askdb/askdb/internal/agent"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	_ "github.com/askdb/askdb/internal/database/duckdb"
	_ "github.com/askdb/askdb/internal/database/mysql"
	_ "github.com/askdb/askdb/internal/database/postgres"
	_ "github.com/askdb/askdb/internal/database/sqlserver"
	"github.com/askdb/askdb/internal/llm"
)

var (
	verbose bool

	// Database connection flags
	dialect                        string
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	sslMode                        string
	dbPath                         string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool
	queryTimeoutSecs               int

	// Backend flags
	backend            string
	model              string
	baseURL            string
	apiKey             string
	temperature        float32
	maxTokens          int
	requestTimeoutSecs int

	// Agent flags
	targetTable    string
	targetColumn   string
	contextColumns []string
	maxResults     int
	sampleLimit    int
	domainContext  string
)

var (
	cfg    *config.Config
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask natural-language questions against one database table",
	Long: `askdb introspects a single configured table, asks a text-generation
backend to translate questions into SQL WHERE clauses, executes the resulting
query, and prints the matching values.`,
	SilenceUsage: true,
}

// initConfigAndLogger assembles the immutable Config from flags and
// environment variables (flags win) and sets up logging. Components receive
// this value explicitly; nothing reads the environment after this point.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	v := viper.New()
	bindings := map[string]string{
		"host":           "POSTGRES_HOST",
		"port":           "POSTGRES_PORT",
		"username":       "POSTGRES_USER",
		"password":       "POSTGRES_PASSWORD",
		"database":       "POSTGRES_DB",
		"table":          "TARGET_TABLE",
		"column":         "TARGET_COLUMN",
		"model":          "LLM_MODEL",
		"base-url":       "LLM_BASE_URL",
		"api-key":        "LLM_API_KEY",
		"domain-context": "DOMAIN_CONTEXT",
	}
	for flagName, envName := range bindings {
		if err := v.BindEnv(flagName, envName); err != nil {
			return err
		}
		if f := rootCmd.PersistentFlags().Lookup(flagName); f != nil {
			if err := v.BindPFlag(flagName, f); err != nil {
				return err
			}
		}
	}

	c := config.Default()
	c.Database.Dialect = dialect
	c.Database.Host = stringOr(v.GetString("host"), c.Database.Host)
	if p := v.GetInt("port"); p != 0 {
		c.Database.Port = p
	}
	c.Database.User = v.GetString("username")
	c.Database.Password = v.GetString("password")
	c.Database.DBName = v.GetString("database")
	c.Database.SSLMode = stringOr(sslMode, c.Database.SSLMode)
	c.Database.Path = dbPath
	c.Database.CloudSQLInstanceConnectionName = cloudSQLInstanceConnectionName
	c.Database.UsePrivateIP = cloudSQLUsePrivateIP
	if queryTimeoutSecs > 0 {
		c.Database.QueryTimeout = time.Duration(queryTimeoutSecs) * time.Second
	}

	c.LLM.Backend = stringOr(backend, c.LLM.Backend)
	c.LLM.Model = v.GetString("model")
	c.LLM.BaseURL = stringOr(v.GetString("base-url"), c.LLM.BaseURL)
	c.LLM.APIKey = v.GetString("api-key")
	c.LLM.Temperature = temperature
	if maxTokens > 0 {
		c.LLM.MaxTokens = maxTokens
	}
	if requestTimeoutSecs > 0 {
		c.LLM.RequestTimeout = time.Duration(requestTimeoutSecs) * time.Second
	}

	c.Agent.Table = v.GetString("table")
	c.Agent.Column = v.GetString("column")
	c.Agent.ContextColumns = contextColumns
	if maxResults > 0 {
		c.Agent.MaxResults = maxResults
	}
	if sampleLimit > 0 {
		c.Agent.SampleLimit = sampleLimit
	}
	c.Agent.DomainContext = v.GetString("domain-context")
	cfg = c

	zapCfg := zap.NewProductionConfig()
	if verbose {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.DisableStacktrace = true
	l, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l.Sugar()
	return nil
}

func stringOr(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// setupDatabase validates the config and opens the connection pool.
func setupDatabase() (*database.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Errorw("failed to connect to database", "dialect", cfg.Database.Dialect, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// setupCompleter builds the backend client, or returns nil when no model is
// configured. The agent keeps working without one for fixed queries and
// schema inspection.
func setupCompleter(ctx context.Context) llm.Completer {
	if !cfg.HasBackend() {
		logger.Debugw("no completion model configured; natural-language queries disabled")
		return nil
	}
	completer, err := llm.NewCompleter(ctx, llm.Config{
		Backend:        cfg.LLM.Backend,
		Model:          cfg.LLM.Model,
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		RequestTimeout: cfg.LLM.RequestTimeout,
	})
	if err != nil {
		logger.Warnw("failed to initialize completion backend; natural-language queries disabled", "error", err)
		return nil
	}
	return completer
}

// setupAgent wires database, backend, and agent together.
func setupAgent(ctx context.Context) (*agent.Agent, *database.DB, error) {
	db, err := setupDatabase()
	if err != nil {
		return nil, nil, err
	}
	a, err := agent.New(ctx, db, setupCompleter(ctx), cfg.Agent, cfg.LLM, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return a, db, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRunE = initConfigAndLogger
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	pf.StringVar(&dialect, "dialect", "postgres", "Database dialect (postgres, mysql, sqlserver, duckdb, cloudsqlpostgres, cloudsqlmysql, cloudsqlsqlserver)")
	pf.StringVar(&host, "host", "", "Database host (env POSTGRES_HOST)")
	pf.IntVar(&port, "port", 0, "Database port (env POSTGRES_PORT)")
	pf.StringVar(&username, "username", "", "Database user (env POSTGRES_USER)")
	pf.StringVar(&password, "password", "", "Database password (env POSTGRES_PASSWORD)")
	pf.StringVar(&dbName, "database", "", "Database name (env POSTGRES_DB)")
	pf.StringVar(&sslMode, "sslmode", "", "PostgreSQL SSL mode")
	pf.StringVar(&dbPath, "db-path", "", "DuckDB database file path")
	pf.StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (project:region:instance)")
	pf.BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Dial Cloud SQL over private IP")
	pf.IntVar(&queryTimeoutSecs, "query-timeout", 0, "Database query timeout in seconds")

	pf.StringVar(&backend, "backend", "", "Completion backend: openai (Ollama-compatible) or gemini")
	pf.StringVar(&model, "model", "", "Completion model identifier (env LLM_MODEL)")
	pf.StringVar(&baseURL, "base-url", "", "Completion endpoint base URL (env LLM_BASE_URL)")
	pf.StringVar(&apiKey, "api-key", "", "Completion API key (env LLM_API_KEY)")
	pf.Float32Var(&temperature, "temperature", 0, "Completion sampling temperature")
	pf.IntVar(&maxTokens, "max-tokens", 0, "Completion max output tokens")
	pf.IntVar(&requestTimeoutSecs, "request-timeout", 0, "Completion request timeout in seconds")

	pf.StringVar(&targetTable, "table", "", "Target table name (env TARGET_TABLE)")
	pf.StringVar(&targetColumn, "column", "", "Target column name (env TARGET_COLUMN)")
	pf.StringSliceVar(&contextColumns, "context-columns", nil, "Columns whose full distinct-value sets are embedded in the prompt")
	pf.IntVar(&maxResults, "limit", 0, "Maximum result rows")
	pf.IntVar(&sampleLimit, "sample-limit", 0, "Sample values per column in the prompt")
	pf.StringVar(&domainContext, "domain-context", "", "Free-text domain guidance prepended to the prompt (env DOMAIN_CONTEXT)")
}
