package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Host string `env:"CHAT_HOST,default=0.0.0.0"`
	Port int    `env:"CHAT_PORT,default=8000"`

	DBDriver   string `env:"DB_DRIVER,default=sqlite"`
	DBPath     string `env:"DB_PATH,default=chat.db"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     int    `env:"DB_PORT,default=5432"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=60s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PingInterval time.Duration `env:"PING_INTERVAL,default=30s"`
	MaxFrameSize int           `env:"MAX_FRAME_SIZE,default=65536"`
	AckMessages  bool          `env:"ACK_MESSAGES,default=false"`

	HistoryDefaultLimit int `env:"HISTORY_DEFAULT_LIMIT,default=50"`

	LogLevel      string `env:"LOG_LEVEL,default=info"`
	ControlSocket string `env:"CONTROL_SOCKET,default=/tmp/chatgate.sock"`
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnviron()
}

// FromEnviron builds the configuration from the process environment only.
func FromEnviron() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DBName == "" || c.DBUser == "" {
			return errors.New("DB_NAME and DB_USER are required for the postgres driver")
		}
		if c.DBPort <= 0 {
			return fmt.Errorf("invalid DB_PORT %d", c.DBPort)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid CHAT_PORT %d", c.Port)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.PingInterval <= 0 {
		return errors.New("READ_TIMEOUT, WRITE_TIMEOUT and PING_INTERVAL must be positive")
	}
	if c.PingInterval >= c.ReadTimeout {
		return fmt.Errorf("PING_INTERVAL (%s) must be shorter than READ_TIMEOUT (%s)", c.PingInterval, c.ReadTimeout)
	}
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("invalid MAX_FRAME_SIZE %d", c.MaxFrameSize)
	}
	if c.HistoryDefaultLimit < 1 || c.HistoryDefaultLimit > 100 {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT must be within 1..100, got %d", c.HistoryDefaultLimit)
	}
	return nil
}

// Address is the HTTP listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DatabaseURL is the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	return u.String()
}
