package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"NetMonitorAPI/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Monitor  MonitorConfig
	MQTT     MQTTConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

type DatabaseConfig struct {
	Driver          string // "sqlite" or "postgres"
	Path            string // sqlite only
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MonitorConfig struct {
	DefaultInterval time.Duration
	Concurrency     int
	FetchTimeout    time.Duration
	StopGrace       time.Duration
}

type MQTTConfig struct {
	Enabled        bool
	Broker         string
	Port           int
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
}

type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
}

type LoggingConfig struct {
	Level     logger.Level
	FilePath  string
	UseColors bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
			ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "10s"),
			WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "10s"),
			MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", "data/monitoring.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "netmonitor"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "netmonitor"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Monitor: MonitorConfig{
			DefaultInterval: getEnvAsDuration("MONITOR_INTERVAL", "60s"),
			Concurrency:     getEnvAsInt("MONITOR_CONCURRENCY", 8),
			FetchTimeout:    getEnvAsDuration("MONITOR_FETCH_TIMEOUT", "30s"),
			StopGrace:       getEnvAsDuration("MONITOR_STOP_GRACE", "5s"),
		},
		MQTT: MQTTConfig{
			Enabled:        getEnvAsBool("MQTT_ENABLED", false),
			Broker:         getEnv("MQTT_BROKER", "localhost"),
			Port:           getEnvAsInt("MQTT_PORT", 1883),
			ClientID:       getEnv("MQTT_CLIENT_ID", "netmonitor-api"),
			Username:       getEnv("MQTT_USERNAME", ""),
			Password:       getEnv("MQTT_PASSWORD", ""),
			TopicPrefix:    getEnv("MQTT_TOPIC_PREFIX", "netmonitor"),
			QoS:            byte(getEnvAsInt("MQTT_QOS", 1)),
			KeepAlive:      getEnvAsDuration("MQTT_KEEP_ALIVE", "60s"),
			ConnectTimeout: getEnvAsDuration("MQTT_CONNECT_TIMEOUT", "10s"),
			AutoReconnect:  getEnvAsBool("MQTT_AUTO_RECONNECT", true),
		},
		Security: SecurityConfig{
			CORSAllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
			CORSAllowedMethods: strings.Split(getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"), ","),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
		},
		Logging: LoggingConfig{
			Level:     logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
			FilePath:  getEnv("LOG_FILE_PATH", ""),
			UseColors: getEnvAsBool("LOG_USE_COLORS", true),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errors = append(errors, "DB_PATH cannot be empty with the sqlite driver")
		}
	case "postgres":
		if c.Database.Host == "" {
			errors = append(errors, "DB_HOST cannot be empty with the postgres driver")
		}
		if c.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD cannot be empty with the postgres driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.Monitor.DefaultInterval < time.Second {
		errors = append(errors, "MONITOR_INTERVAL must be at least 1s")
	}
	if c.Monitor.Concurrency < 1 {
		errors = append(errors, "MONITOR_CONCURRENCY must be at least 1")
	}

	if c.MQTT.Enabled && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errors = append(errors, "MQTT_PORT must be between 1 and 65535")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("──────────────────────────────────────────────")
	fmt.Println(" NetMonitor API - Configuration")
	fmt.Println("──────────────────────────────────────────────")
	fmt.Printf("Environment:   %s\n", c.Server.Environment)
	fmt.Printf("Server:        %s:%d\n", c.Server.Host, c.Server.Port)
	if c.Database.Driver == "sqlite" {
		fmt.Printf("Database:      sqlite (%s)\n", c.Database.Path)
	} else {
		fmt.Printf("Database:      %s:%d/%s\n", c.Database.Host, c.Database.Port, c.Database.Database)
	}
	fmt.Printf("Poll interval: %s (default)\n", c.Monitor.DefaultInterval)
	if c.MQTT.Enabled {
		fmt.Printf("MQTT Broker:   %s:%d\n", c.MQTT.Broker, c.MQTT.Port)
	}
	fmt.Println("──────────────────────────────────────────────")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
