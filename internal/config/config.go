package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/cache"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/hub"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

type Config struct {
	Server    ServerConfig
	Database  database.Config
	Auth      AuthConfig
	WebSocket hub.Config
	Redis     cache.RedisConfig
	Cache     cache.Config
	Kafka     KafkaConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
	Issuer        string        `mapstructure:"issuer"`
}

type KafkaConfig struct {
	Brokers       string `mapstructure:"brokers"`
	EventsTopic   string `mapstructure:"events_topic"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	Partitions    int    `mapstructure:"partitions"`
}

// Enabled reports whether an event broker is configured.
func (k KafkaConfig) Enabled() bool {
	return k.Brokers != ""
}

// Load reads configuration from config.yaml and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, rely on defaults and env vars.
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "crm")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/crm.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", "24h")
	v.SetDefault("auth.issuer", "crm-server")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.prefix", "crm")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.events_topic", "crm-events")
	v.SetDefault("kafka.consumer_group", "crm-workflows")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.events_topic", "KAFKA_EVENTS_TOPIC")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Auth.TokenDuration = parseDuration(v, "auth.token_duration", 24*time.Hour)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Cache.TTL = parseDuration(v, "cache.ttl", 30*time.Second)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}
