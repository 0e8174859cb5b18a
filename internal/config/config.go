package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	AuthModeHeader = "header"
	AuthModeJWT    = "jwt"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Pagination PaginationConfig `yaml:"pagination"`
	Gateway    GatewayConfig    `yaml:"gateway"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
}

// DSN builds a lib/pq key=value connection string.
func (c PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      AuthConfig         `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Port           int           `yaml:"port"`
	Reflection     bool          `yaml:"reflection"`
	HealthInterval time.Duration `yaml:"health_interval"`
}

// AuthConfig selects how the caller's user id is established.
type AuthConfig struct {
	Mode       string `yaml:"mode"`
	UserHeader string `yaml:"user_header"`
	JWTSecret  string `yaml:"jwt_secret"`
}

// APIRateLimitConfig is a per-user fixed window. Requests <= 0 disables it.
type APIRateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type BookingConfig struct {
	// StrictStart requires start > now instead of start >= now.
	StrictStart bool `yaml:"strict_start"`
	// AllowRedecideRejected lets an owner decide a REJECTED booking again.
	AllowRedecideRejected bool `yaml:"allow_redecide_rejected"`
}

type PaginationConfig struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

type GatewayConfig struct {
	Port       int                    `yaml:"port"`
	BackendURL string                 `yaml:"backend_url"`
	RateLimit  GatewayRateLimitConfig `yaml:"rate_limit"`
	CORS       CORSConfig             `yaml:"cors"`
}

type GatewayRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverPostgres:
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			return errors.New("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.API.Auth.Mode {
	case AuthModeHeader:
	case AuthModeJWT:
		if c.API.Auth.JWTSecret == "" {
			return errors.New("api.auth.jwt_secret is required in jwt mode")
		}
	default:
		return fmt.Errorf("unsupported auth mode %q", c.API.Auth.Mode)
	}

	if c.Pagination.DefaultSize > c.Pagination.MaxSize {
		return fmt.Errorf("pagination.default_size %d exceeds max_size %d", c.Pagination.DefaultSize, c.Pagination.MaxSize)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverPostgres && c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 9090
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 9091
	}
	if c.API.GRPC.HealthInterval == 0 {
		c.API.GRPC.HealthInterval = 15 * time.Second
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9100
	}

	c.API.Auth.Mode = strings.ToLower(strings.TrimSpace(c.API.Auth.Mode))
	if c.API.Auth.Mode == "" {
		c.API.Auth.Mode = AuthModeHeader
	}
	if c.API.Auth.UserHeader == "" {
		c.API.Auth.UserHeader = models.UserIDHeader
	}
	if c.API.RateLimit.Requests > 0 && c.API.RateLimit.Window == 0 {
		c.API.RateLimit.Window = time.Minute
	}

	if c.Pagination.DefaultSize == 0 {
		c.Pagination.DefaultSize = models.DefaultPageSize
	}
	if c.Pagination.MaxSize == 0 {
		c.Pagination.MaxSize = models.MaxPageSize
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.BackendURL == "" {
		c.Gateway.BackendURL = fmt.Sprintf("http://localhost:%d", c.API.HTTP.Port)
	}
	if c.Gateway.RateLimit.RPS > 0 && c.Gateway.RateLimit.Burst == 0 {
		c.Gateway.RateLimit.Burst = 5
	}
}
