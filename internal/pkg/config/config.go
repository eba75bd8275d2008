package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string   `env:"PORT,         default=3000"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI"`
	User     string        `env:"DB_USER"`
	Password string        `env:"DB_PASS"`
	Host     string        `env:"MONGO_HOST,     default=localhost:27017"`
	SRV      bool          `env:"MONGO_SRV,      default=false"`
	AppName  string        `env:"MONGO_APP_NAME, default=catalog-service"`
	Database string        `env:"MONGO_DB,       default=Assignment-12"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT,  default=10s"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,       default=0"`
	VoteCacheTTL time.Duration `env:"VOTE_CACHE_TTL, default=1h"`
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ConnectionURI returns MONGO_URI when set, otherwise a URI assembled from
// the host and credentials. Credentials are escaped.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}

	u := url.URL{Scheme: "mongodb", Host: m.Host, Path: "/"}
	if m.SRV {
		u.Scheme = "mongodb+srv"
	}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Password)
	}

	q := url.Values{}
	q.Set("retryWrites", "true")
	q.Set("w", "majority")
	if m.AppName != "" {
		q.Set("appName", m.AppName)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Load reads a .env file from the working directory when one exists, then
// resolves configuration from environment variables using go-envconfig.
// Variables already present in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
