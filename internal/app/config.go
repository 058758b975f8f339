package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/data/db"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/mailer"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/realtime/bus"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/services"
)

const (
	maxConfigFileSize = 1024 * 1024
	devJWTSecret      = "change-me"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Auth    AuthConfig    `koanf:"auth"`
	DB      DBConfig      `koanf:"db"`
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
	Otel    OtelConfig    `koanf:"otel"`
	Seed    SeedConfig    `koanf:"seed"`
	Mail    MailConfig    `koanf:"mail"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	Mode            string        `koanf:"mode"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

type LogConfig struct {
	Mode             string `koanf:"mode"`
	Level            string `koanf:"level"`
	DisableRedaction bool   `koanf:"disable_redaction"`
	HashSalt         string `koanf:"hash_salt"`
}

type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	AccessTokenTTL time.Duration `koanf:"access_token_ttl"`
	Issuer         string        `koanf:"issuer"`
	BcryptCost     int           `koanf:"bcrypt_cost"`
}

type DBConfig struct {
	Driver       string        `koanf:"driver"`
	DSN          string        `koanf:"dsn"`
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	User         string        `koanf:"user"`
	Password     string        `koanf:"password"`
	Name         string        `koanf:"name"`
	SSLMode      string        `koanf:"sslmode"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	SlowQuery    time.Duration `koanf:"slow_query"`
	AutoMigrate  bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Channel  string `koanf:"channel"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

type OtelConfig struct {
	Enabled     bool    `koanf:"enabled"`
	ServiceName string  `koanf:"service_name"`
	Environment string  `koanf:"environment"`
	Endpoint    string  `koanf:"endpoint"`
	Headers     string  `koanf:"headers"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

type SeedConfig struct {
	Enabled bool   `koanf:"enabled"`
	File    string `koanf:"file"`
}

type MailConfig struct {
	SendGridAPIKey string `koanf:"sendgrid_api_key"`
	BaseURL        string `koanf:"base_url"`
	FromEmail      string `koanf:"from_email"`
	FromName       string `koanf:"from_name"`
}

// Version is stamped at build time with -ldflags.
var Version = "dev"

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            5000,
			Mode:            "development",
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Mode: "development", Level: "info"},
		Auth: AuthConfig{
			JWTSecret:      devJWTSecret,
			AccessTokenTTL: 24 * time.Hour,
			Issuer:         "webotixs-crm",
			BcryptCost:     10,
		},
		DB: DBConfig{
			Driver:       db.DriverSQLite,
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 20,
			MaxIdleConns: 5,
			SlowQuery:    200 * time.Millisecond,
			AutoMigrate:  true,
		},
		Redis:   RedisConfig{Channel: bus.DefaultChannel},
		Metrics: MetricsConfig{Enabled: true},
		Otel: OtelConfig{
			ServiceName: "webotixs-crm",
			Environment: "development",
			SampleRatio: 1,
		},
		Seed: SeedConfig{Enabled: true},
		Mail: MailConfig{FromEmail: "hello@webotixs.com", FromName: "Webotixs"},
	}
}

// LoadConfig layers defaults, an optional YAML file and the environment.
// Environment keys map SECTION_FIELD_NAME to section.field_name.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if path = strings.TrimSpace(path); path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return Config{}, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return Config{}, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

var configSections = map[string]bool{
	"server": true, "log": true, "auth": true, "db": true, "redis": true,
	"metrics": true, "otel": true, "seed": true, "mail": true,
}

// envKey maps SERVER_SHUTDOWN_TIMEOUT to server.shutdown_timeout. Variables
// outside the known sections land under an ignored prefix.
func envKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !configSections[parts[0]] {
		return "_env." + lower
	}
	return parts[0] + "." + parts[1]
}

func (c Config) Production() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Production() && (secret == devJWTSecret || len(secret) < 32) {
		return fmt.Errorf("auth.jwt_secret must be set to at least 32 characters in production")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive")
	}
	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		return fmt.Errorf("otel.sample_ratio must be within [0,1]")
	}
	return nil
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:             c.Log.Mode,
		Level:            c.Log.Level,
		DisableRedaction: c.Log.DisableRedaction,
		HashSalt:         c.Log.HashSalt,
	}
}

func (c Config) Database() db.Config {
	return db.Config{
		Driver:       c.DB.Driver,
		DSN:          c.DB.DSN,
		Host:         c.DB.Host,
		Port:         c.DB.Port,
		User:         c.DB.User,
		Password:     c.DB.Password,
		Name:         c.DB.Name,
		SSLMode:      c.DB.SSLMode,
		MaxOpenConns: c.DB.MaxOpenConns,
		MaxIdleConns: c.DB.MaxIdleConns,
		SlowQuery:    c.DB.SlowQuery,
	}
}

func (c Config) RedisBus() bus.RedisConfig {
	return bus.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Channel:  c.Redis.Channel,
	}
}

func (c Config) Tracing() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Otel.Enabled,
		ServiceName: c.Otel.ServiceName,
		Environment: c.Otel.Environment,
		Version:     Version,
		Endpoint:    c.Otel.Endpoint,
		Headers:     observability.ParseHeaders(c.Otel.Headers),
		Insecure:    c.Otel.Insecure,
		SampleRatio: c.Otel.SampleRatio,
	}
}

func (c Config) Mailer() mailer.Config {
	return mailer.Config{
		APIKey:     c.Mail.SendGridAPIKey,
		BaseURL:    c.Mail.BaseURL,
		FromEmail:  c.Mail.FromEmail,
		FromName:   c.Mail.FromName,
		MaxRetries: 2,
	}
}

func (c Config) AuthService() services.AuthConfig {
	return services.AuthConfig{
		JWTSecret: c.Auth.JWTSecret,
		AccessTTL: c.Auth.AccessTokenTTL,
		Issuer:    c.Auth.Issuer,
	}
}
