package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	PasswordModePlaintext = "plaintext"
	PasswordModeBcrypt    = "bcrypt"
)

type Config struct {
	Server struct {
		Host         string        `yaml:"host" env:"FRIENDBOOK_HOST" env-default:"0.0.0.0"`
		Port         int           `yaml:"port" env:"FRIENDBOOK_PORT" env-default:"5000"`
		ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"15s"`
		WriteTimeout time.Duration `yaml:"write_timeout" env-default:"15s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	} `yaml:"server"`

	Database struct {
		SQLitePath    string `yaml:"sqlite_path" env:"FRIENDBOOK_SQLITE_PATH" env-default:"friendbook.db"`
		BusyTimeoutMs int    `yaml:"busy_timeout_ms" env-default:"5000"`
	} `yaml:"database"`

	Session struct {
		CookieName    string `yaml:"cookie_name" env-default:"friendbook"`
		Secret        string `yaml:"secret" env:"FRIENDBOOK_SESSION_SECRET"`
		EncryptionKey string `yaml:"encryption_key" env:"FRIENDBOOK_SESSION_ENCRYPTION_KEY"`
		MaxAge        int    `yaml:"max_age" env-default:"0"`
		Secure        bool   `yaml:"secure" env:"FRIENDBOOK_SESSION_SECURE"`
	} `yaml:"session"`

	Auth struct {
		// plaintext stores and compares passwords verbatim; bcrypt hashes on register.
		PasswordMode string `yaml:"password_mode" env:"FRIENDBOOK_PASSWORD_MODE" env-default:"plaintext"`
	} `yaml:"auth"`

	Cors struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"FRIENDBOOK_CORS_ORIGINS" env-separator:","`
	} `yaml:"cors"`

	Log struct {
		Level  string `yaml:"level" env:"FRIENDBOOK_LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"FRIENDBOOK_LOG_FORMAT" env-default:"text"`
	} `yaml:"log"`
}

// Load reads the YAML file at path (if any), then applies environment
// overrides. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Could not load .env file: %v", err)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading config from env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is not set")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is not set")
	}
	switch n := len(c.Session.EncryptionKey); n {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("session.encryption_key must be 16, 24 or 32 bytes, got %d", n)
	}
	switch c.Auth.PasswordMode {
	case PasswordModePlaintext, PasswordModeBcrypt:
	default:
		return fmt.Errorf("auth.password_mode must be %q or %q, got %q",
			PasswordModePlaintext, PasswordModeBcrypt, c.Auth.PasswordMode)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
