package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env"` // current application environment (local, dev, production)
	TelegramAPIToken string   `mapstructure:"-"`   // Telegram API token loaded from environment
	API              API      `mapstructure:"api"`
	Quiz             Quiz     `mapstructure:"quiz"`
	DB               DB       `mapstructure:"database"`
	Log              Log      `mapstructure:"log"`
	HTTP             HTTP     `mapstructure:"http"`
	Telegram         Telegram `mapstructure:"telegram"`
}

// API configures the exam backend client.
type API struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Quiz configures running quiz sessions.
type Quiz struct {
	TickInterval time.Duration `mapstructure:"tick_interval"` // how often the question timer is redrawn
	TimeLimit    time.Duration `mapstructure:"time_limit"`    // hard deadline per session, 0 disables it
	DefaultCount int           `mapstructure:"default_count"` // questions in a generated practice test
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// Log configures log output. An empty File logs to stdout only.
type Log struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// HTTP configures the ops server. An empty Addr disables it.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Telegram configures outgoing Bot API traffic.
type Telegram struct {
	RateLimit float64 `mapstructure:"rate_limit"` // message edits per second across all chats
	Debug     bool    `mapstructure:"debug"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// IsProduction reports whether the bot runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine, the variables may come from the real environment.
	_ = godotenv.Load()

	return load("./config")
}

func load(paths ...string) (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("quiz.tick_interval", "5s")
	v.SetDefault("quiz.time_limit", "0s")
	v.SetDefault("quiz.default_count", 10)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "5s")
	v.SetDefault("telegram.rate_limit", 20)
	v.SetDefault("telegram.debug", false)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.API.BaseURL == "":
		return errors.New("config: api.base_url is empty")
	case c.Quiz.TickInterval <= 0:
		return errors.New("config: quiz.tick_interval must be positive")
	case c.Quiz.TimeLimit < 0:
		return errors.New("config: quiz.time_limit must not be negative")
	case c.Quiz.DefaultCount <= 0:
		return errors.New("config: quiz.default_count must be positive")
	case c.Telegram.RateLimit <= 0:
		return errors.New("config: telegram.rate_limit must be positive")
	}
	return nil
}
