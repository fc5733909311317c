// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Registry      RegistryConfig     `mapstructure:"registry"`
	Events        EventsConfig       `mapstructure:"events"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Integrations  IntegrationConfig  `mapstructure:"integrations"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Tracing       TracingConfig      `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	StaticDir       string `mapstructure:"static_dir"`
}

// RegistryConfig points at an optional seed file. Empty means the built-in
// activity list.
type RegistryConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

// Event sinks.
const (
	SinkNone  = "none"
	SinkRedis = "redis"
	SinkSNS   = "sns"
)

type EventsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Sink           string `mapstructure:"sink"`
	StreamPrefix   string `mapstructure:"stream_prefix"`
	MaxLen         int64  `mapstructure:"max_len"`
	PublishTimeout int    `mapstructure:"publish_timeout"` // milliseconds
	SNS            struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IntegrationConfig holds settings for external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// NotificationConfig controls participant confirmation emails.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig controls request spans. An empty JaegerEndpoint keeps spans
// in-process.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
