package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
	Chat      ChatConfig
}

type AppConfig struct {
	Environment string // "development", "production", "test"
	Port        string
	ServiceName string
	LogLevel    string
	CORSOrigin  string
}

type StoreConfig struct {
	Driver       string
	MongoURI     string
	MongoDB      string
	PollInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	ServerId string
}

type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type TelemetryConfig struct {
	OTLPEndpoint string
}

type ChatConfig struct {
	EphemeralGroupTTL time.Duration
	ProfileCacheTTL   time.Duration
}

func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	hostname, _ := os.Hostname()
	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "8080"),
			ServiceName: getEnv("SERVICE_NAME", "campusconnect"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("DOCSTORE_DRIVER", DriverMongo)),
			MongoURI:     getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDB:      getEnv("MONGODB_DATABASE", "campusconnect"),
			PollInterval: getEnvDuration("MONGODB_POLL_INTERVAL", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			ServerId: getEnv("SERVER_ID", hostname),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		},
		Events: EventsConfig{
			AMQPURL:  getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "campusconnect.events"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Chat: ChatConfig{
			EphemeralGroupTTL: getEnvDuration("EPHEMERAL_GROUP_TTL", time.Hour),
			ProfileCacheTTL:   getEnvDuration("PROFILE_CACHE_TTL", 30*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if !c.App.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.Auth.JWTSecret = "dev-secret"
	}
	switch c.Store.Driver {
	case DriverMongo, DriverMemory:
	default:
		return errors.New("DOCSTORE_DRIVER must be mongo or memory")
	}
	if c.Chat.EphemeralGroupTTL <= 0 {
		return errors.New("EPHEMERAL_GROUP_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// bare numbers are seconds
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
