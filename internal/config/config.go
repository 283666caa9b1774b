package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreRedis    = "redis"
	StoreMemory   = "memory"

	ProviderDeepgram = "deepgram"
	ProviderOpenAI   = "openai"
)

type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	StoreBackend string
	AWS          AWSConfig
	Redis        RedisConfig

	STTProvider string
	DeepgramKey string
	DeepgramURL string
	OpenAIKey   string
}

// AWSConfig holds the DynamoDB connection settings.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Table           string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:            v.GetString("PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		StoreBackend:    strings.ToLower(v.GetString("STORE_BACKEND")),
		AWS: AWSConfig{
			Region:          v.GetString("REGION_NAME"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			Endpoint:        v.GetString("DYNAMODB_ENDPOINT"),
			Table:           v.GetString("DYNAMODB_TABLE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		STTProvider: strings.ToLower(v.GetString("STT_PROVIDER")),
		DeepgramKey: v.GetString("DEEPGRAM_KEY"),
		DeepgramURL: v.GetString("DEEPGRAM_URL"),
		OpenAIKey:   v.GetString("OPENAI_API_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STORE_BACKEND", StoreDynamoDB)
	v.SetDefault("REGION_NAME", "us-east-1")
	v.SetDefault("DYNAMODB_TABLE", "transcriptions")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STT_PROVIDER", ProviderDeepgram)
	v.SetDefault("DEEPGRAM_URL", "https://api.deepgram.com/v1/listen")
}

// Validate checks that the selected store and provider are known and that the
// provider has its API key.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreDynamoDB:
		if c.AWS.Table == "" {
			return fmt.Errorf("DYNAMODB_TABLE must not be empty")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s. Supported: dynamodb, redis, memory", c.StoreBackend)
	}

	switch c.STTProvider {
	case ProviderDeepgram:
		if c.DeepgramKey == "" {
			return fmt.Errorf("DEEPGRAM_KEY is required when STT_PROVIDER=deepgram")
		}
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when STT_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unsupported STT_PROVIDER: %s. Supported: deepgram, openai", c.STTProvider)
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported GIN_MODE: %s. Supported: debug, release, test", c.GinMode)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
