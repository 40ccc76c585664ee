package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/ArinjayBhola/DocuSend-sub001/pkg/config"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Presence  PresenceConfig
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string `mapstructure:"db_name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type CacheConfig struct {
	Prefix string
	TTL    time.Duration
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string
	AccessDuration time.Duration `mapstructure:"access_duration"`
}

type PresenceConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	ViewTTL       time.Duration `mapstructure:"view_ttl"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBufferSize int           `mapstructure:"send_buffer_size"`
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8094)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "docusend.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.prefix", "docusend:document")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "view-sessions")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.issuer", "docusend")
	v.SetDefault("auth.access_duration", "24h")
	v.SetDefault("presence.sweep_interval", "30s")
	v.SetDefault("presence.view_ttl", "5m")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer_size", 256)
	v.SetDefault("log.level", "info")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.db_name", "DB_NAME")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_VIEW_SESSIONS_TOPIC")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Cache.TTL = parseDuration(v, "cache.ttl", 5*time.Minute)
	cfg.Auth.AccessDuration = parseDuration(v, "auth.access_duration", 24*time.Hour)
	cfg.Presence.SweepInterval = parseDuration(v, "presence.sweep_interval", 30*time.Second)
	cfg.Presence.ViewTTL = parseDuration(v, "presence.view_ttl", 5*time.Minute)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
