// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.sqlweaver/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: provider, model, temperature, max tokens, embedder model
//   - Retrieval: chunk size/overlap, top-k, index backend and paths
//   - Docs: per-dialect reference documentation URLs, scraper pacing
//   - Storage: PostgreSQL connection for the pgvector index backend
//   - Observability: optional OTLP trace endpoint
//
// Security: the PostgreSQL password is masked in MarshalJSON and String.
// Validation: range checks live in validation.go with sentinel errors for
// Go-idiomatic checking via errors.Is.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

// Index backend identifiers used in Config.IndexBackend.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// DefaultEmbedderModel is the default Gemini embedder model.
// gemini-embedding-001 supports truncation to 768 dimensions via
// OutputDimensionality; the pgvector schema in db/migrations assumes 768.
const DefaultEmbedderModel = "gemini-embedding-001"

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON.
type Config struct {
	// AI provider and model configuration
	Provider    string  `mapstructure:"provider" json:"provider"`
	ModelName   string  `mapstructure:"model_name" json:"model_name"`
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Embedding configuration
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`

	// Retrieval configuration
	ChunkSize    int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	TopK         int    `mapstructure:"top_k" json:"top_k"`
	IndexBackend string `mapstructure:"index_backend" json:"index_backend"`
	IndexDir     string `mapstructure:"index_dir" json:"index_dir"`
	RawDocsDir   string `mapstructure:"raw_docs_dir" json:"raw_docs_dir"`

	// Reference documentation sources, keyed by dialect in the file
	// (docs.trino_urls / docs.spark_urls).
	TrinoDocURLs []string `mapstructure:"trino_doc_urls" json:"trino_doc_urls"`
	SparkDocURLs []string `mapstructure:"spark_doc_urls" json:"spark_doc_urls"`

	// Scraper pacing for the fetch-docs command
	ScraperParallelism int `mapstructure:"scraper_parallelism" json:"scraper_parallelism"`
	ScraperDelayMs     int `mapstructure:"scraper_delay_ms" json:"scraper_delay_ms"`

	// Output-contract parsing. When false (default), model responses
	// wrapped in markdown code fences are rejected as invalid JSON.
	LenientFences bool `mapstructure:"lenient_fences" json:"lenient_fences"`

	// RequestsPerMinute caps model calls across goroutines. Zero
	// disables the limiter.
	RequestsPerMinute int `mapstructure:"requests_per_minute" json:"requests_per_minute"`

	// PostgreSQL configuration (pgvector index backend only)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Observability (empty endpoint = tracing disabled)
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	Environment  string `mapstructure:"environment" json:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".sqlweaver")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use defaults
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	// AI defaults
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("temperature", 0.1)
	v.SetDefault("max_tokens", 4000)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	// Retrieval defaults
	v.SetDefault("chunk_size", 800)
	v.SetDefault("chunk_overlap", 50)
	v.SetDefault("top_k", 3)
	v.SetDefault("index_backend", BackendFile)
	v.SetDefault("index_dir", filepath.Join(configDir, "indexes"))
	v.SetDefault("raw_docs_dir", filepath.Join(configDir, "raw_docs"))

	// Reference documentation sources
	v.SetDefault("trino_doc_urls", []string{
		"https://trino.io/docs/current/functions.html",
		"https://trino.io/docs/current/sql/select.html",
		"https://trino.io/docs/current/functions/datetime.html",
		"https://trino.io/docs/current/functions/aggregate.html",
		"https://trino.io/docs/current/functions/window.html",
	})
	v.SetDefault("spark_doc_urls", []string{
		"https://spark.apache.org/docs/latest/sql-ref-syntax.html",
		"https://spark.apache.org/docs/latest/sql-ref-functions-builtin.html",
		"https://spark.apache.org/docs/latest/sql-ref-syntax-qry-select.html",
		"https://spark.apache.org/docs/latest/sql-ref-datatypes.html",
	})

	// Scraper defaults
	v.SetDefault("scraper_parallelism", 2)
	v.SetDefault("scraper_delay_ms", 1000)

	// Output-contract parsing defaults to strict
	v.SetDefault("lenient_fences", false)

	// Rate limiting defaults to off
	v.SetDefault("requests_per_minute", 0)

	// PostgreSQL defaults (only used with index_backend: postgres)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "sqlweaver")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "sqlweaver")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Observability defaults (disabled)
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("environment", "dev")
}

// bindEnvVariables binds environment variables explicitly.
//
// NOTE: GEMINI_API_KEY and OPENAI_API_KEY are read directly by the Genkit
// provider plugins, not via viper. Validate() checks their presence based
// on the selected provider.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a failure is a bug, not a
	// runtime condition.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "SQLWEAVER_PROVIDER")
	mustBind("model_name", "SQLWEAVER_MODEL_NAME")
	mustBind("embedder_model", "SQLWEAVER_EMBEDDER_MODEL")
	mustBind("index_backend", "SQLWEAVER_INDEX_BACKEND")
	mustBind("index_dir", "SQLWEAVER_INDEX_DIR")
	mustBind("lenient_fences", "SQLWEAVER_LENIENT_FENCES")
	mustBind("otlp_endpoint", "SQLWEAVER_OTLP_ENDPOINT")
	mustBind("postgres_password", "SQLWEAVER_POSTGRES_PASSWORD")
}

// parseDatabaseURL overrides the PostgreSQL settings from DATABASE_URL
// when set. The URL form takes priority over individual fields.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported DATABASE_URL scheme: %s", u.Scheme)
	}

	c.PostgresHost = u.Hostname()
	if p := u.Port(); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &c.PostgresPort); err != nil {
			return fmt.Errorf("invalid DATABASE_URL port %q: %w", p, err)
		}
	}
	if u.User != nil {
		c.PostgresUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		c.PostgresDBName = db
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}
	return nil
}

// PostgresURL returns the postgres:// connection URL for migrations.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.PostgresUser), url.QueryEscape(c.PostgresPassword),
		c.PostgresHost, c.PostgresPort, c.PostgresDBName, c.PostgresSSLMode)
}

// FullModelName returns the provider-qualified model name for Genkit.
// Examples: "googleai/gemini-2.5-flash", "ollama/llama3.3", "openai/gpt-4o".
// If ModelName already contains a "/", it is returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	switch c.Provider {
	case ProviderOllama:
		return ProviderOllama + "/" + c.ModelName
	case ProviderOpenAI:
		return ProviderOpenAI + "/" + c.ModelName
	default:
		return ProviderGoogleAI + "/" + c.ModelName
	}
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks avoid accidental substring matches against real
// password characters.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 bytes
// or fewer are fully masked; longer secrets keep the first and last two
// characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field
// masking. When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// DocURLs returns the configured documentation URL list for a dialect
// tag ("trino" or "spark"). Unknown tags return nil.
func (c *Config) DocURLs(tag string) []string {
	switch strings.ToLower(tag) {
	case "trino":
		return c.TrinoDocURLs
	case "spark":
		return c.SparkDocURLs
	default:
		return nil
	}
}
