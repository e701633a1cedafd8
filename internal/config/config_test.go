package config

import (
	"errors"
	"strings"
	"testing"
)

// validConfig returns a config that passes Validate with the ollama
// provider, which needs no API key from the test environment.
func validConfig() Config {
	return Config{
		Provider:      ProviderOllama,
		ModelName:     "llama3.3",
		Temperature:   0.1,
		MaxTokens:     4000,
		EmbedderModel: "nomic-embed-text",
		ChunkSize:     800,
		ChunkOverlap:  50,
		TopK:          3,
		IndexBackend:  BackendFile,
		PostgresHost:  "localhost",
		PostgresPort:  5432,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "claude" }, wantErr: ErrInvalidProvider},
		{name: "empty model name", mutate: func(c *Config) { c.ModelName = "" }, wantErr: ErrInvalidModelName},
		{name: "model name with spaces", mutate: func(c *Config) { c.ModelName = "bad model" }, wantErr: ErrInvalidModelName},
		{name: "negative temperature", mutate: func(c *Config) { c.Temperature = -0.1 }, wantErr: ErrInvalidTemperature},
		{name: "temperature above range", mutate: func(c *Config) { c.Temperature = 2.5 }, wantErr: ErrInvalidTemperature},
		{name: "zero max tokens", mutate: func(c *Config) { c.MaxTokens = 0 }, wantErr: ErrInvalidMaxTokens},
		{name: "empty embedder model", mutate: func(c *Config) { c.EmbedderModel = "" }, wantErr: ErrInvalidEmbedderModel},
		{name: "zero chunk size", mutate: func(c *Config) { c.ChunkSize = 0 }, wantErr: ErrInvalidChunking},
		{name: "overlap not below size", mutate: func(c *Config) { c.ChunkOverlap = 800 }, wantErr: ErrInvalidChunking},
		{name: "zero top-k", mutate: func(c *Config) { c.TopK = 0 }, wantErr: ErrInvalidTopK},
		{name: "top-k above range", mutate: func(c *Config) { c.TopK = 50 }, wantErr: ErrInvalidTopK},
		{name: "unknown backend", mutate: func(c *Config) { c.IndexBackend = "redis" }, wantErr: ErrInvalidIndexBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePostgresBackend(t *testing.T) {
	cfg := validConfig()
	cfg.IndexBackend = BackendPostgres
	cfg.PostgresPort = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidPostgresPort) {
		t.Errorf("Validate() error = %v, want ErrInvalidPostgresPort", err)
	}

	cfg = validConfig()
	cfg.IndexBackend = BackendPostgres
	cfg.PostgresHost = ""
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidPostgresHost) {
		t.Errorf("Validate() error = %v, want ErrInvalidPostgresHost", err)
	}
}

func TestValidateAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg := validConfig()
	cfg.Provider = ProviderGemini
	if err := cfg.ValidateAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("ValidateAPIKey() error = %v, want ErrMissingAPIKey", err)
	}

	// Structural validation must still pass with no key in the
	// environment; offline commands rely on this.
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() without key: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	if err := cfg.ValidateAPIKey(); err != nil {
		t.Errorf("ValidateAPIKey() with key set: %v", err)
	}

	cfg.Provider = ProviderOllama
	t.Setenv("GEMINI_API_KEY", "")
	if err := cfg.ValidateAPIKey(); err != nil {
		t.Errorf("ValidateAPIKey() for local provider: %v", err)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty stays empty", input: "", want: ""},
		{name: "short fully masked", input: "secret", want: maskedValue},
		{name: "long keeps edges", input: "super-secret-password", want: "su<" + maskedValue + ">rd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSecret(tt.input); got != tt.want {
				t.Errorf("maskSecret(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigStringMasksPassword(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "hunter2-very-secret"

	out := cfg.String()
	if strings.Contains(out, "hunter2-very-secret") {
		t.Error("String() leaks the PostgreSQL password")
	}
	if !strings.Contains(out, maskedValue) {
		t.Error("String() should contain the mask placeholder")
	}
}

func TestFullModelName(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{name: "gemini gets googleai prefix", provider: ProviderGemini, model: "gemini-2.5-flash", want: "googleai/gemini-2.5-flash"},
		{name: "ollama prefix", provider: ProviderOllama, model: "llama3.3", want: "ollama/llama3.3"},
		{name: "openai prefix", provider: ProviderOpenAI, model: "gpt-4o", want: "openai/gpt-4o"},
		{name: "qualified name unchanged", provider: ProviderGemini, model: "vertexai/gemini-2.5-pro", want: "vertexai/gemini-2.5-pro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Provider: tt.provider, ModelName: tt.model}
			if got := cfg.FullModelName(); got != tt.want {
				t.Errorf("FullModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocURLs(t *testing.T) {
	cfg := Config{
		TrinoDocURLs: []string{"https://trino.io/docs"},
		SparkDocURLs: []string{"https://spark.apache.org/docs"},
	}
	if got := cfg.DocURLs("TRINO"); len(got) != 1 || got[0] != "https://trino.io/docs" {
		t.Errorf("DocURLs(TRINO) = %v", got)
	}
	if got := cfg.DocURLs("spark"); len(got) != 1 {
		t.Errorf("DocURLs(spark) = %v", got)
	}
	if got := cfg.DocURLs("mysql"); got != nil {
		t.Errorf("DocURLs(mysql) = %v, want nil", got)
	}
}

func TestParseDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://alice:pw@db.example.com:5433/weaver?sslmode=require")

	cfg := validConfig()
	if err := cfg.parseDatabaseURL(); err != nil {
		t.Fatalf("parseDatabaseURL() error: %v", err)
	}
	if cfg.PostgresHost != "db.example.com" || cfg.PostgresPort != 5433 {
		t.Errorf("host/port = %s:%d", cfg.PostgresHost, cfg.PostgresPort)
	}
	if cfg.PostgresUser != "alice" || cfg.PostgresPassword != "pw" {
		t.Errorf("user/password not parsed")
	}
	if cfg.PostgresDBName != "weaver" || cfg.PostgresSSLMode != "require" {
		t.Errorf("dbname/sslmode = %s/%s", cfg.PostgresDBName, cfg.PostgresSSLMode)
	}
}

func TestParseDatabaseURLRejectsOtherSchemes(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://root@localhost/db")

	cfg := validConfig()
	if err := cfg.parseDatabaseURL(); err == nil {
		t.Error("parseDatabaseURL() expected error for mysql scheme")
	}
}
