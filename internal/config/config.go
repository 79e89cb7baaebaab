package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del proceso.
type Config struct {
	Events     EventsConfig     `mapstructure:"events" validate:"required"`
	Completion CompletionConfig `mapstructure:"completion" validate:"required"`
	Sweep      SweepConfig      `mapstructure:"sweep" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Analytics  AnalyticsConfig  `mapstructure:"analytics"`
	DeadLetter DeadLetterConfig `mapstructure:"deadletter"`
	HTTP       HTTPConfig       `mapstructure:"http" validate:"required"`
	Log        LogConfig        `mapstructure:"log"`
}

// EventsConfig configura el stream de eventos de tareas.
type EventsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Transport "kafka" usa el broker; "memory" un bus en proceso de una sola partición.
	Transport string `mapstructure:"transport" validate:"oneof=kafka memory"`
	// ConnectionString acepta una lista de brokers separada por comas o una
	// connection string de Azure Event Hubs (Endpoint=sb://...).
	ConnectionString string        `mapstructure:"connection_string" validate:"required"`
	Topic            string        `mapstructure:"topic" validate:"required"`
	ConsumerGroup    string        `mapstructure:"consumer_group" validate:"required"`
	PublishTimeout   time.Duration `mapstructure:"publish_timeout" validate:"gt=0"`
	Workers          int           `mapstructure:"workers" validate:"gt=0"`
	BackoffInitial   time.Duration `mapstructure:"backoff_initial" validate:"gt=0"`
	BackoffMax       time.Duration `mapstructure:"backoff_max" validate:"gtefield=BackoffInitial"`
}

type CompletionConfig struct {
	Provider  string        `mapstructure:"provider" validate:"oneof=openai gemini none"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model" validate:"required"`
	BaseURL   string        `mapstructure:"base_url" validate:"omitempty,url"`
	MaxTokens int           `mapstructure:"max_tokens" validate:"gt=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type SweepConfig struct {
	Interval       time.Duration `mapstructure:"interval" validate:"gt=0"`
	Dedup          bool          `mapstructure:"dedup"`
	DeadlineWindow time.Duration `mapstructure:"deadline_window" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite pgx"`
	URL    string `mapstructure:"url" validate:"required"`
}

type StorageConfig struct {
	// Artifacts elige dónde se guardan sugerencias y notificaciones.
	Artifacts string `mapstructure:"artifacts" validate:"oneof=sql mongo"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type AnalyticsConfig struct {
	ClickHouseAddr     string `mapstructure:"clickhouse_addr"`
	ClickHouseDatabase string `mapstructure:"clickhouse_database"`
}

type DeadLetterConfig struct {
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port" validate:"required,numeric"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// setDefaults registra todas las claves conocidas; AutomaticEnv solo resuelve
// en Unmarshal las claves que viper ya conoce.
func setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.transport", "kafka")
	v.SetDefault("events.connection_string", "localhost:9092")
	v.SetDefault("events.topic", "todos")
	v.SetDefault("events.consumer_group", "$Default")
	v.SetDefault("events.publish_timeout", 5*time.Second)
	v.SetDefault("events.workers", 8)
	v.SetDefault("events.backoff_initial", 5*time.Second)
	v.SetDefault("events.backoff_max", 60*time.Second)

	v.SetDefault("completion.provider", "openai")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.model", "gpt-4o-mini")
	v.SetDefault("completion.base_url", "https://api.openai.com/v1")
	v.SetDefault("completion.max_tokens", 150)
	v.SetDefault("completion.timeout", 30*time.Second)

	v.SetDefault("sweep.interval", time.Hour)
	v.SetDefault("sweep.dedup", true)
	v.SetDefault("sweep.deadline_window", 2*time.Hour)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file:tasksense.db")
	v.SetDefault("storage.artifacts", "sql")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "tasksense")

	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("analytics.clickhouse_addr", "")
	v.SetDefault("analytics.clickhouse_database", "default")
	v.SetDefault("deadletter.path", "")

	v.SetDefault("http.port", "8080")
	v.SetDefault("log.level", "info")
}

// LoadConfig lee defaults, el fichero opcional de CONFIG_FILE y el entorno
// (EVENTS_TOPIC sobreescribe events.topic), y valida el resultado.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate aplica las reglas declarativas y las que dependen de varios campos.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Completion.Provider != "none" && c.Completion.APIKey == "" {
		return fmt.Errorf("%w: completion.api_key is required for provider %q", ErrInvalidConfig, c.Completion.Provider)
	}
	if c.Storage.Artifacts == "mongo" && c.Mongo.URI == "" {
		return fmt.Errorf("%w: mongo.uri is required when storage.artifacts=mongo", ErrInvalidConfig)
	}
	return nil
}
