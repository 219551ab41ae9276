package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Suno      SunoConfig
	Audio     AudioConfig
	Groq      GroqConfig
	Polling   PollingConfig
	Registry  RegistryConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	DSN string
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	LyricsPerMin    int
	GeneratePerHour int
}

type SunoConfig struct {
	APIKey      string
	BaseURL     string
	CallbackURL string
}

type AudioConfig struct {
	AllowedHosts []string
	Timeout      int // seconds
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type PollingConfig struct {
	IntervalSeconds int
	MaxAttempts     int
}

type RegistryConfig struct {
	TTLMinutes int
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("SUNO_API_KEY")
	readSecret("GROQ_API_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("database.dsn", "DATABASE_DSN")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("suno.api_key", "SUNO_API_KEY")
	_ = viper.BindEnv("suno.base_url", "SUNO_BASE_URL")
	_ = viper.BindEnv("suno.callback_url", "SUNO_CALLBACK_URL")
	_ = viper.BindEnv("audio.allowed_hosts", "AUDIO_ALLOWED_HOSTS")
	_ = viper.BindEnv("audio.timeout", "AUDIO_TIMEOUT")
	_ = viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = viper.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = viper.BindEnv("groq.model", "GROQ_MODEL")
	_ = viper.BindEnv("polling.interval_seconds", "POLLING_INTERVAL_SECONDS")
	_ = viper.BindEnv("polling.max_attempts", "POLLING_MAX_ATTEMPTS")
	_ = viper.BindEnv("registry.ttl_minutes", "REGISTRY_TTL_MINUTES")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("database.dsn", "musicmotivate.db")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.lyrics_per_min", 30)
	viper.SetDefault("ratelimit.generate_per_hour", 10)

	// Suno defaults
	viper.SetDefault("suno.base_url", "https://api.sunoapi.org")

	// Audio proxy defaults — only provider-hosted URLs may be fetched
	viper.SetDefault("audio.allowed_hosts", []string{"suno.ai", "sunoapi"})
	viper.SetDefault("audio.timeout", 120)

	// Groq defaults
	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.model", "llama-3.3-70b-versatile")

	// Webhook polling defaults: 60 rounds x 5s = 5 minute ceiling
	viper.SetDefault("polling.interval_seconds", 5)
	viper.SetDefault("polling.max_attempts", 60)

	// Task registry entries expire after 15 minutes regardless of state
	viper.SetDefault("registry.ttl_minutes", 15)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			DSN: viper.GetString("database.dsn"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			LyricsPerMin:    viper.GetInt("ratelimit.lyrics_per_min"),
			GeneratePerHour: viper.GetInt("ratelimit.generate_per_hour"),
		},
		Suno: SunoConfig{
			APIKey:      viper.GetString("suno.api_key"),
			BaseURL:     viper.GetString("suno.base_url"),
			CallbackURL: viper.GetString("suno.callback_url"),
		},
		Audio: AudioConfig{
			AllowedHosts: viper.GetStringSlice("audio.allowed_hosts"),
			Timeout:      viper.GetInt("audio.timeout"),
		},
		Groq: GroqConfig{
			APIKey:  viper.GetString("groq.api_key"),
			BaseURL: viper.GetString("groq.base_url"),
			Model:   viper.GetString("groq.model"),
		},
		Polling: PollingConfig{
			IntervalSeconds: viper.GetInt("polling.interval_seconds"),
			MaxAttempts:     viper.GetInt("polling.max_attempts"),
		},
		Registry: RegistryConfig{
			TTLMinutes: viper.GetInt("registry.ttl_minutes"),
		},
	}

	return cfg, nil
}
