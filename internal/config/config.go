// Package config loads process configuration from the environment and an
// optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values. It is constructed once at process
// start and passed by reference into the components that need it; business
// logic never reads environment variables directly.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// LLM provider selection
	LLMProvider     Provider `yaml:"llm_provider"`
	LLMModel        string   `yaml:"llm_model"`
	OpenAIAPIKey    string   `yaml:"-"`
	AnthropicAPIKey string   `yaml:"-"`
	OllamaHost      string   `yaml:"ollama_host"`
	BedrockModel    string   `yaml:"bedrock_model"`

	// Research pipeline
	ResearchTimeout  time.Duration `yaml:"research_timeout"`   // ceiling per workflow invocation
	ResearchRPS      float64       `yaml:"research_rps"`       // token bucket refill rate for topic processing
	ResearchBurst    int           `yaml:"research_burst"`     // token bucket burst
	MaxTopics        int           `yaml:"max_topics"`         // hard cap per analysis
	TopicContextNote string        `yaml:"topic_context_note"` // default context attached to identified topics

	// HTTP server
	ServerAddr    string `yaml:"server_addr"`
	InternalToken string `yaml:"-"` // shared secret set by the fronting proxy

	// Client
	ServerURL     string        `yaml:"server_url"`
	ClientTimeout time.Duration `yaml:"client_timeout"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables, applying values from
// an optional YAML file first (env wins). The file path comes from
// MAILBRIEF_CONFIG and defaults to mailbrief.yaml in the working directory.
func Load() Config {
	cfg := Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "mailbrief",
		SurrealDBDatabase:  "app",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LLMProvider:      ProviderOpenAI,
		LLMModel:         "gpt-4o",
		OllamaHost:       "http://localhost:11434",
		BedrockModel:     "anthropic.claude-3-5-sonnet-20241022-v2:0",
		ResearchTimeout:  5 * time.Minute,
		ResearchRPS:      0.5,
		ResearchBurst:    1,
		MaxTopics:        5,
		TopicContextNote: "Email thread analysis",

		ServerAddr:    ":8484",
		ServerURL:     "http://localhost:8484",
		ClientTimeout: 10 * time.Minute,

		LogFile:  "/tmp/mailbrief.log",
		LogLevel: slog.LevelInfo,
	}

	path := getEnv("MAILBRIEF_CONFIG", "mailbrief.yaml")
	if err := loadFile(path, &cfg); err != nil {
		slog.Warn("failed to load config file, using env/defaults only", "file", path, "error", err)
	}

	cfg.SurrealDBURL = getEnv("SURREALDB_URL", cfg.SurrealDBURL)
	cfg.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDBNamespace)
	cfg.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", cfg.SurrealDBDatabase)
	cfg.SurrealDBUser = getEnv("SURREALDB_USER", cfg.SurrealDBUser)
	cfg.SurrealDBPass = getEnv("SURREALDB_PASS", cfg.SurrealDBPass)
	cfg.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", cfg.SurrealDBAuthLevel)

	cfg.LLMProvider = Provider(getEnv("MAILBRIEF_LLM_PROVIDER", string(cfg.LLMProvider)))
	cfg.LLMModel = getEnv("MAILBRIEF_LLM_MODEL", cfg.LLMModel)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.BedrockModel = getEnv("MAILBRIEF_BEDROCK_MODEL", cfg.BedrockModel)

	cfg.ResearchTimeout = getDuration("MAILBRIEF_RESEARCH_TIMEOUT", cfg.ResearchTimeout)
	cfg.ResearchRPS = getFloat("MAILBRIEF_RESEARCH_RPS", cfg.ResearchRPS)
	cfg.ResearchBurst = getInt("MAILBRIEF_RESEARCH_BURST", cfg.ResearchBurst)

	cfg.ServerAddr = getEnv("MAILBRIEF_SERVER_ADDR", cfg.ServerAddr)
	cfg.InternalToken = os.Getenv("MAILBRIEF_INTERNAL_TOKEN")
	cfg.ServerURL = getEnv("MAILBRIEF_SERVER_URL", cfg.ServerURL)
	cfg.ClientTimeout = getDuration("MAILBRIEF_CLIENT_TIMEOUT", cfg.ClientTimeout)

	cfg.LogFile = getEnv("MAILBRIEF_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = parseLogLevel(getEnv("MAILBRIEF_LOG_LEVEL", "INFO"))

	return cfg
}

// Validate checks that the configuration is usable for the selected provider.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY required for provider %q", c.LLMProvider)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY required for provider %q", c.LLMProvider)
		}
	case ProviderOllama, ProviderBedrock:
		// credentials come from the host / AWS environment
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}
	if c.MaxTopics <= 0 || c.MaxTopics > 5 {
		return fmt.Errorf("max_topics must be between 1 and 5, got %d", c.MaxTopics)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
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
