package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

const EnvironmentDevelopment = "development"

type Database struct {
	Type             string `yaml:"type" validate:"oneof=sqlite postgres"`
	ConnectionString string `yaml:"connectionString" validate:"required"`
}

type S3 struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Endpoint  string `yaml:"endpoint"`
}

type Storage struct {
	Type         string `yaml:"type" validate:"oneof=local s3"`
	UploadDir    string `yaml:"uploadDir" validate:"required"`
	ProcessedDir string `yaml:"processedDir" validate:"required"`
	S3           S3     `yaml:"s3"`
}

type BoxCache struct {
	RedisAddress string        `yaml:"redisAddress"`
	TTL          time.Duration `yaml:"ttl" validate:"min=0"`
}

type FaceDetection struct {
	Type        string        `yaml:"type" validate:"oneof=pigo remote none"`
	CascadePath string        `yaml:"cascadePath"`
	Endpoint    string        `yaml:"endpoint"`
	MinSize     int           `yaml:"minSize" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" validate:"min=0"`
	Cache       BoxCache      `yaml:"cache"`
}

type Matting struct {
	Type     string        `yaml:"type" validate:"oneof=remote none"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=0"`
}

type ServiceConfig struct {
	Port              int           `yaml:"port" validate:"min=1,max=65535"`
	Environment       string        `yaml:"environment"`
	SentryDSN         string        `yaml:"sentryDSN"`
	MaxUploadMB       int           `yaml:"maxUploadMB" validate:"gt=0"`
	Database          Database      `yaml:"database"`
	Storage           Storage       `yaml:"storage"`
	FaceDetection     FaceDetection `yaml:"faceDetection"`
	Matting           Matting       `yaml:"matting"`
	SVGFallbackWidth  int           `yaml:"svgFallbackWidth" validate:"gt=0"`
	SVGFallbackHeight int           `yaml:"svgFallbackHeight" validate:"gt=0"`
}

// DefaultConfig returns the configuration used for every key a config file leaves out
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:        5000,
		Environment: EnvironmentDevelopment,
		MaxUploadMB: 16,
		Database: Database{
			Type:             "sqlite",
			ConnectionString: "photo_maker.db",
		},
		Storage: Storage{
			Type:         "local",
			UploadDir:    "uploads",
			ProcessedDir: "processed",
		},
		FaceDetection: FaceDetection{
			Type:    "pigo",
			MinSize: 30,
			Timeout: 30 * time.Second,
			Cache: BoxCache{
				TTL: time.Hour,
			},
		},
		Matting: Matting{
			Type:     "remote",
			Endpoint: "http://localhost:7000/api/remove",
			Timeout:  60 * time.Second,
		},
		SVGFallbackWidth:  1000,
		SVGFallbackHeight: 1000,
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *ServiceConfig) IsDevelopment() bool {
	return c.Environment == EnvironmentDevelopment
}

// LoadConfig loads configuration from the specified YAML file on top of the defaults.
// A missing file yields the defaults. The PORT environment variable overrides the port.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("config file not found, using defaults", "path", configPath)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT environment variable %q: %w", port, err)
		}
		config.Port = p
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate checks value ranges and that every selected backend has what it needs
func (c *ServiceConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket must be set for s3 storage")
	}
	if c.FaceDetection.Type == "remote" && c.FaceDetection.Endpoint == "" {
		return fmt.Errorf("faceDetection.endpoint must be set for remote detection")
	}
	if c.Matting.Type == "remote" && c.Matting.Endpoint == "" {
		return fmt.Errorf("matting.endpoint must be set for remote matting")
	}
	return nil
}
