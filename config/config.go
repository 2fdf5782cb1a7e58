package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Logger        LoggerConfig
	Postgres      PostgresConfig
	JWT           JWTConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Elastic       ElasticsearchConfig
	Identifier    IdentifierConfig
	Inventory     InventoryConfig
	Task          TaskConfig
	PasswordReset PasswordResetConfig
	I18n          I18nConfig
}

type ServerConfig struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"dev"`
	HTTPPort        string        `env:"HTTP_PORT" envDefault:":8080"`
	GRPCPort        string        `env:"GRPC_PORT" envDefault:":8082"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
}

type LoggerConfig struct {
	Level             string `env:"LOGGER_LEVEL" envDefault:"debug"`
	Encoding          string `env:"LOGGER_ENCODING" envDefault:"console"`
	DisableCaller     bool   `env:"LOGGER_DISABLE_CALLER" envDefault:"false"`
	DisableStacktrace bool   `env:"LOGGER_DISABLE_STACKTRACE" envDefault:"true"`
	File              string `env:"LOGGER_FILE"`
	MaxSizeMB         int    `env:"LOGGER_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups        int    `env:"LOGGER_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays        int    `env:"LOGGER_MAX_AGE_DAYS" envDefault:"28"`
}

type PostgresConfig struct {
	Host            string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            string `env:"POSTGRES_PORT" envDefault:"5433"`
	User            string `env:"POSTGRES_USER" envDefault:"omnipos"`
	Password        string `env:"POSTGRES_PASSWORD" envDefault:"omnipos"`
	DBName          string `env:"POSTGRES_DB" envDefault:"omnipos_marketplace"`
	SSLMode         string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int    `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int    `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime int    `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"300"`
	ConnMaxIdleTime int    `env:"POSTGRES_CONN_MAX_IDLE_TIME" envDefault:"60"`
}

type JWTConfig struct {
	SecretKey      string        `env:"JWT_SECRET_KEY" envDefault:"your-secret-key-change-this-in-prod"`
	Issuer         string        `env:"JWT_ISSUER" envDefault:"omnipos-marketplace"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"2h"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type KafkaConfig struct {
	Brokers      []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	OrdersTopic  string   `env:"KAFKA_TOPIC_ORDERS" envDefault:"orders.events"`
	CatalogTopic string   `env:"KAFKA_TOPIC_CATALOG" envDefault:"catalog.events"`
	GroupID      string   `env:"KAFKA_GROUP_INVENTORY" envDefault:"marketplace-inventory"`
}

type ElasticsearchConfig struct {
	Addresses []string `env:"ELASTICSEARCH_ADDRESSES" envSeparator:"," envDefault:"http://localhost:9200"`
	Username  string   `env:"ELASTICSEARCH_USERNAME"`
	Password  string   `env:"ELASTICSEARCH_PASSWORD"`
}

type IdentifierConfig struct {
	MaxAttempts int `env:"IDENTIFIER_MAX_ATTEMPTS" envDefault:"100"`
	RaceRetries int `env:"IDENTIFIER_RACE_RETRIES" envDefault:"3"`
}

type InventoryConfig struct {
	CriticalUnits int           `env:"INVENTORY_CRITICAL_UNITS" envDefault:"5"`
	LockTTL       time.Duration `env:"INVENTORY_LOCK_TTL" envDefault:"5s"`
}

type TaskConfig struct {
	StockAuditEnabled bool   `env:"TASK_STOCK_AUDIT_ENABLED" envDefault:"true"`
	StockAuditSpec    string `env:"TASK_STOCK_AUDIT_SPEC" envDefault:"0 */15 * * * *"`
}

type PasswordResetConfig struct {
	TTL     time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`
	LinkURL string        `env:"PASSWORD_RESET_LINK_URL" envDefault:"http://localhost:3000/reset-password"`
}

// I18nConfig lists message files loaded on top of the embedded en and id
// catalogs.
type I18nConfig struct {
	Files []string `env:"I18N_FILES" envSeparator:","`
}

// LoadEnv reads an optional .env file and then the process environment.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}
