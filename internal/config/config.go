package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type DBConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN prefers a full connection URL and falls back to key/value parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type LLMConfig struct {
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	OpenAIModel     string
	CLIPath         string
	Language        string
	MaxContentChars int
	QuizQuestions   int
}

type Config struct {
	Addr           string
	LogMode        string
	Lang           string
	CORSOrigins    []string
	JWTSecret      string
	TokenTTL       time.Duration
	RedisAddr      string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	DB             DBConfig
	LLM            LLMConfig
}

// RegisterFlags declares every setting on fs with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("addr", "a", ":8080", "HTTP listen address")
	fs.String("log-mode", "dev", "Log mode (dev, prod)")
	fs.StringP("lang", "l", "th", "Default language for result messages (th, en)")
	fs.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	fs.String("jwt-secret", "", "HMAC key for profile tokens (required)")
	fs.Duration("token-ttl", 72*time.Hour, "Profile token lifetime")
	fs.String("redis-addr", "", "Redis address for quiz sessions (empty keeps them in memory)")
	fs.Duration("session-ttl", 24*time.Hour, "How long an idle quiz session is kept")
	fs.Int64("max-upload-bytes", 10<<20, "Maximum size of an uploaded lesson file")

	fs.String("database-url", "", "PostgreSQL connection URL (overrides db-* parts)")
	fs.String("db-host", "localhost", "PostgreSQL host")
	fs.String("db-port", "5432", "PostgreSQL port")
	fs.String("db-user", "postgres", "PostgreSQL user")
	fs.String("db-password", "postgres", "PostgreSQL password")
	fs.String("db-name", "kruai_db", "PostgreSQL database")
	fs.String("db-sslmode", "disable", "PostgreSQL sslmode")

	fs.String("llm-provider", "anthropic", "LLM backend (anthropic, openai, cli, mock)")
	fs.String("anthropic-api-key", "", "Anthropic API key")
	fs.String("anthropic-model", "claude-sonnet-4-5-20250929", "Anthropic model")
	fs.String("openai-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	fs.String("openai-api-key", "", "OpenAI-compatible API key")
	fs.String("openai-model", "gpt-4o-mini", "OpenAI-compatible model")
	fs.String("cli-path", "claude", "Path to the local LLM CLI")
	fs.String("content-language", "Thai", "Language the generated lessons are written in")
	fs.Int("max-content-chars", 20000, "Lesson text is truncated to this many characters")
	fs.Int("quiz-questions", 10, "Questions per generated quiz")
}

// NewViper binds fs and the KRUAI_* environment to a fresh viper instance
// and reads an optional kruai config file.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix("KRUAI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by the deployment scripts.
	_ = v.BindEnv("database-url", "KRUAI_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("anthropic-api-key", "KRUAI_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai-api-key", "KRUAI_OPENAI_API_KEY", "OPENAI_API_KEY")

	v.SetConfigName("kruai")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/kruai")
	v.AddConfigPath("/etc/kruai")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads settings out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:           v.GetString("addr"),
		LogMode:        v.GetString("log-mode"),
		Lang:           v.GetString("lang"),
		CORSOrigins:    v.GetStringSlice("cors-origins"),
		JWTSecret:      v.GetString("jwt-secret"),
		TokenTTL:       v.GetDuration("token-ttl"),
		RedisAddr:      v.GetString("redis-addr"),
		SessionTTL:     v.GetDuration("session-ttl"),
		MaxUploadBytes: v.GetInt64("max-upload-bytes"),
		DB:             LoadDB(v),
		LLM: LLMConfig{
			Provider:        strings.ToLower(v.GetString("llm-provider")),
			AnthropicAPIKey: v.GetString("anthropic-api-key"),
			AnthropicModel:  v.GetString("anthropic-model"),
			OpenAIBaseURL:   v.GetString("openai-url"),
			OpenAIAPIKey:    v.GetString("openai-api-key"),
			OpenAIModel:     v.GetString("openai-model"),
			CLIPath:         v.GetString("cli-path"),
			Language:        v.GetString("content-language"),
			MaxContentChars: v.GetInt("max-content-chars"),
			QuizQuestions:   v.GetInt("quiz-questions"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDB reads only the database settings, for commands that need nothing else.
func LoadDB(v *viper.Viper) DBConfig {
	return DBConfig{
		URL:      v.GetString("database-url"),
		Host:     v.GetString("db-host"),
		Port:     v.GetString("db-port"),
		User:     v.GetString("db-user"),
		Password: v.GetString("db-password"),
		Name:     v.GetString("db-name"),
		SSLMode:  v.GetString("db-sslmode"),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt-secret is required")
	}
	switch c.LLM.Provider {
	case "anthropic", "openai", "cli", "mock":
	default:
		return fmt.Errorf("unknown llm-provider %q", c.LLM.Provider)
	}
	if c.LLM.QuizQuestions <= 0 {
		return fmt.Errorf("quiz-questions must be positive")
	}
	if c.LLM.MaxContentChars <= 0 {
		return fmt.Errorf("max-content-chars must be positive")
	}
	return nil
}
