package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Midtrans  MidtransConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	Checkout  CheckoutConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	Name             string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	TxTimeout        time.Duration
	MaxRetryAttempts int
}

type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig leaves caching disabled when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	MenuTTL  time.Duration
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type MidtransConfig struct {
	ServerKey          string
	Environment        string
	EnabledPayments    []string
	RequestTimeout     time.Duration
	VerifyPolledStatus bool
}

func (m MidtransConfig) IsProduction() bool {
	return strings.EqualFold(m.Environment, "production")
}

// MailConfig leaves admin emails disabled when Host is empty.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type CheckoutConfig struct {
	StrictStock bool
}

// Load reads .env (when present), the optional YAML file at path and
// environment variables, in increasing order of precedence.
// Nested keys map to env vars by upper-casing and replacing dots,
// so database.host is DATABASE_HOST.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Host:             v.GetString("database.host"),
			Port:             v.GetInt("database.port"),
			User:             v.GetString("database.user"),
			Password:         v.GetString("database.password"),
			Name:             v.GetString("database.name"),
			MaxOpenConns:     v.GetInt("database.max_open_conns"),
			MaxIdleConns:     v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime:  v.GetDuration("database.conn_max_lifetime"),
			TxTimeout:        v.GetDuration("database.tx_timeout"),
			MaxRetryAttempts: v.GetInt("database.max_retry_attempts"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			MenuTTL:  v.GetDuration("redis.menu_ttl"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Midtrans: MidtransConfig{
			ServerKey:          v.GetString("midtrans.server_key"),
			Environment:        v.GetString("midtrans.environment"),
			EnabledPayments:    splitList(v.GetStringSlice("midtrans.enabled_payments")),
			RequestTimeout:     v.GetDuration("midtrans.request_timeout"),
			VerifyPolledStatus: v.GetBool("midtrans.verify_polled_status"),
		},
		Mail: MailConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit.rps"),
			Burst: v.GetInt("rate_limit.burst"),
		},
		Checkout: CheckoutConfig{
			StrictStock: v.GetBool("checkout.strict_stock"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "cozycup")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "cozycup")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.tx_timeout", "5s")
	v.SetDefault("database.max_retry_attempts", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.menu_ttl", "5m")

	v.SetDefault("auth.issuer", "cozycup")

	v.SetDefault("midtrans.environment", "sandbox")
	v.SetDefault("midtrans.enabled_payments", []string{"gopay", "qris", "bank_transfer", "credit_card"})
	v.SetDefault("midtrans.request_timeout", "15s")
	v.SetDefault("midtrans.verify_polled_status", true)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "noreply@cozycup.local")

	v.SetDefault("rate_limit.rps", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("checkout.strict_stock", false)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		problems = append(problems, "database.host and database.name are required")
	}
	if c.Database.MaxRetryAttempts < 1 {
		problems = append(problems, "database.max_retry_attempts must be at least 1")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if c.Midtrans.ServerKey == "" {
		problems = append(problems, "midtrans.server_key is required")
	}
	if env := strings.ToLower(c.Midtrans.Environment); env != "sandbox" && env != "production" {
		problems = append(problems, "midtrans.environment must be sandbox or production")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		problems = append(problems, "rate_limit.rps and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
