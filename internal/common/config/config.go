// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Funnel    FunnelConfig            `mapstructure:"funnel"`
	HTTP      HTTPConfig              `mapstructure:"http"`
	Providers ProvidersConfig         `mapstructure:"providers"`
	Tracing   TracingConfig           `mapstructure:"tracing"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	// CompletionMessage is published, correlated by session ID, whenever a
	// funnel becomes complete. Empty disables publishing.
	CompletionMessage string `mapstructure:"completion_message"`
	MessageTTL        int    `mapstructure:"message_ttl"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
	SQLite        SQLiteConfig        `mapstructure:"sqlite"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SQLiteConfig is used by the CLI to keep answers on the local machine.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// --- Funnel Configuration ---

// FunnelConfig controls answer persistence and remote sync.
type FunnelConfig struct {
	// SlotBackend is "redis", "sqlite" or "memory".
	SlotBackend   string `mapstructure:"slot_backend"`
	SlotTTL       int    `mapstructure:"slot_ttl"` // seconds, 0 keeps answers forever
	SyncEnabled   bool   `mapstructure:"sync_enabled"`
	SyncQueueSize int    `mapstructure:"sync_queue_size"`
	SyncTimeout   int    `mapstructure:"sync_timeout"` // milliseconds
}

// HTTPConfig holds the API/health listener settings.
type HTTPConfig struct {
	Address      string `mapstructure:"address"`
	JWTSecret    string `mapstructure:"jwt_secret"`
	SessionCache int    `mapstructure:"session_cache"`
}

// ProvidersConfig selects the provider supply.
type ProvidersConfig struct {
	// Source is "postgres", "elasticsearch" or "file".
	Source   string `mapstructure:"source"`
	File     string `mapstructure:"file"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds, 0 disables the redis cache
}

// TracingConfig enables the jaeger exporter when an endpoint is set.
type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
