package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingSetting is returned by Validate when a required value is unset.
var ErrMissingSetting = errors.New("missing required setting")

type Config struct {
	APIURL           string        `yaml:"api_url"`
	GoogleMapsAPIKey string        `yaml:"google_maps_api_key"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	APIRateLimit     float64       `yaml:"api_rate_limit"`

	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	Kafka Kafka `yaml:"kafka"`
	Minio Minio `yaml:"minio"`

	DefaultImageURL string `yaml:"default_image_url"`
}

type Kafka struct {
	Broker  string `yaml:"broker"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

// Enabled reports whether the activity feed has somewhere to go.
func (k Kafka) Enabled() bool {
	return k.Broker != "" && k.Topic != ""
}

type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
}

func (m Minio) Enabled() bool {
	return m.Endpoint != "" && m.AccessKey != "" && m.SecretKey != "" && m.Bucket != ""
}

func defaults() *Config {
	return &Config{
		HTTPTimeout:     10 * time.Second,
		APIRateLimit:    10,
		Env:             "development",
		LogLevel:        "info",
		Minio:           Minio{Region: "us-east-1", Bucket: "storefront-assets"},
		DefaultImageURL: "assets/images/coffee-shop.jpg",
	}
}

// LoadEnv loads a .env file if one exists.
// This is typically used in a development environment.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// Load builds the configuration from defaults, the optional YAML file at
// path and finally the process environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.APIURL, "API_URL")
	setString(&cfg.GoogleMapsAPIKey, "GOOGLE_MAPS_API_KEY")
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.DefaultImageURL, "DEFAULT_IMAGE_URL")

	setString(&cfg.Kafka.Broker, "KAFKA_BROKER")
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")

	setString(&cfg.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Minio.Region, "MINIO_REGION")
	setString(&cfg.Minio.Bucket, "ASSET_BUCKET")
	if v, ok := os.LookupEnv("MINIO_USE_SSL"); ok {
		cfg.Minio.UseSSL = v == "true"
	}

	if v, ok := os.LookupEnv("HTTP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v, ok := os.LookupEnv("API_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("API_RATE_LIMIT: %w", err)
		}
		cfg.APIRateLimit = f
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%w: API_URL", ErrMissingSetting)
	}
	if c.GoogleMapsAPIKey == "" {
		return fmt.Errorf("%w: GOOGLE_MAPS_API_KEY", ErrMissingSetting)
	}
	return nil
}

// Development reports whether the console logger should be used.
func (c *Config) Development() bool {
	return c.Env == "" || c.Env == "development"
}
