package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Completion provider types
const (
	ProviderOpenAI           = "openai"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderStub             = "stub"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	LLM     LLMConfig     `mapstructure:"llm"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	CORSOrigins     string        `mapstructure:"cors_origins"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Driver              string         `mapstructure:"driver"`
	ConversationsDir    string         `mapstructure:"conversations_dir"`
	TranscriptCacheFile string         `mapstructure:"transcript_cache_file"`
	BoltPath            string         `mapstructure:"bolt_path"`
	Database            DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// Consecutive failures before completions fail fast; 0 disables the breaker
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

type YouTubeConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Language  string        `mapstructure:"language"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads and validates configuration. See Read.
func Load(configFile string) (*Config, error) {
	cfg, err := Read(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from configFile, or from a file named config.json
// in the default search paths when configFile is empty. A missing config file
// is not an error: defaults and environment overrides still apply.
func Read(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".manakavoo"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	loadEnvOverrides(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.rate_limit_window", "1m")

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.conversations_dir", "conversations")
	v.SetDefault("storage.transcript_cache_file", "video_transcripts.json")
	v.SetDefault("storage.bolt_path", "data/manakavoo.bolt")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "manakavoo")
	v.SetDefault("storage.database.database", "manakavoo")
	v.SetDefault("storage.database.sslmode", "disable")

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.breaker_failures", 5)
	v.SetDefault("llm.breaker_cooldown", "30s")

	v.SetDefault("youtube.base_url", "https://www.youtube.com")
	v.SetDefault("youtube.language", "en")
	v.SetDefault("youtube.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("youtube.timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func loadEnvOverrides(cfg *Config) {
	if host := os.Getenv("MANAKAVOO_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("MANAKAVOO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if origins := os.Getenv("MANAKAVOO_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = origins
	}
	if driver := os.Getenv("MANAKAVOO_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if level := os.Getenv("MANAKAVOO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Storage.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Storage.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Storage.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Storage.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Storage.Database.Database = dbName
	}
}

// Validate checks settings that would otherwise fail on the first request
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return errors.New("no OpenAI API key found, set OPENAI_API_KEY")
		}
	case ProviderOpenAICompatible:
		if c.LLM.BaseURL == "" {
			return errors.New("llm.base_url is required for an OpenAI-compatible provider")
		}
	case ProviderStub:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}
	return nil
}

// Validate checks the storage driver name
func (s StorageConfig) Validate() error {
	switch s.Driver {
	case DriverFile, DriverBolt, DriverPostgres, DriverMemory:
		return nil
	default:
		return fmt.Errorf("unsupported storage driver: %s", s.Driver)
	}
}
