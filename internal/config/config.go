package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Supported backends.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverBolt     = "bolt"

	StorageDisk = "disk"
	StorageS3   = "s3"

	EmbeddingHTTP = "http"
	EmbeddingDlib = "dlib"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty allows any origin
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`         // postgres, mysql or bolt
	URL          string `yaml:"url"`            // PostgreSQL URL or MySQL DSN
	MaxOpenConns int    `yaml:"max_open_conns"` // Maximum open connections (default 25)
	MaxIdleConns int    `yaml:"max_idle_conns"` // Maximum idle connections (default 5)
	BoltPath     string `yaml:"bolt_path"`
}

type StorageConfig struct {
	Backend   string   `yaml:"backend"` // disk or s3
	UploadDir string   `yaml:"upload_dir"`
	S3        S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"` // optional, for S3-compatible services
}

type EmbeddingConfig struct {
	Backend      string `yaml:"backend"` // http or dlib
	URL          string `yaml:"url"`
	Dim          int    `yaml:"dim"`
	ModelsDir    string `yaml:"models_dir"`     // dlib model files
	MaxImageSize int    `yaml:"max_image_size"` // longest edge in pixels before extraction
}

type AlertsConfig struct {
	AMQPURL    string `yaml:"amqp_url"` // empty disables alerts
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envString(key string, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load builds the configuration from embedded defaults, the optional YAML file
// named by CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envString("WEB_HOST", c.Server.Host)
	c.Server.Port = envInt("WEB_PORT", c.Server.Port)
	c.Server.AllowedOrigins = envList("WEB_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Database.Driver = envString("DATABASE_DRIVER", c.Database.Driver)
	c.Database.URL = envString("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.BoltPath = envString("BOLT_PATH", c.Database.BoltPath)

	c.Storage.Backend = envString("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.UploadDir = envString("UPLOAD_DIR", c.Storage.UploadDir)
	c.Storage.S3.Bucket = envString("S3_BUCKET", c.Storage.S3.Bucket)
	c.Storage.S3.Region = envString("S3_REGION", c.Storage.S3.Region)
	c.Storage.S3.Prefix = envString("S3_PREFIX", c.Storage.S3.Prefix)
	c.Storage.S3.Endpoint = envString("S3_ENDPOINT", c.Storage.S3.Endpoint)

	c.Embedding.Backend = envString("EMBEDDING_BACKEND", c.Embedding.Backend)
	c.Embedding.URL = envString("EMBEDDING_URL", c.Embedding.URL)
	c.Embedding.Dim = envInt("EMBEDDING_DIM", c.Embedding.Dim)
	c.Embedding.ModelsDir = envString("EMBEDDING_MODELS_DIR", c.Embedding.ModelsDir)
	c.Embedding.MaxImageSize = envInt("MAX_IMAGE_SIZE", c.Embedding.MaxImageSize)

	c.Alerts.AMQPURL = envString("ALERTS_AMQP_URL", c.Alerts.AMQPURL)
	c.Alerts.Exchange = envString("ALERTS_EXCHANGE", c.Alerts.Exchange)
	c.Alerts.RoutingKey = envString("ALERTS_ROUTING_KEY", c.Alerts.RoutingKey)

	c.Log.Level = envString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envString("LOG_FORMAT", c.Log.Format)
}

// Validate checks enumerated settings and backend prerequisites.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.Database.Driver)
		}
	case DriverBolt:
		if c.Database.BoltPath == "" {
			return fmt.Errorf("BOLT_PATH is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Storage.Backend {
	case StorageDisk:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for storage backend %q", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Embedding.Backend {
	case EmbeddingHTTP, EmbeddingDlib:
	default:
		return fmt.Errorf("unknown embedding backend %q", c.Embedding.Backend)
	}
	return nil
}
