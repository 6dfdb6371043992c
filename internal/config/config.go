package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Mongo struct {
		URI            string `yaml:"uri" env:"MONGO_URI"`
		Database       string `yaml:"database" env:"MONGO_DATABASE"`
		ConnectTimeout string `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT"`
	} `yaml:"mongo"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		Provider string `yaml:"provider" env:"STORAGE_PROVIDER"`

		Cloudinary struct {
			CloudName    string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
			UploadPreset string `yaml:"upload_preset" env:"CLOUDINARY_UPLOAD_PRESET"`
			BaseURL      string `yaml:"base_url" env:"CLOUDINARY_BASE_URL"`
			Timeout      string `yaml:"timeout" env:"CLOUDINARY_TIMEOUT"`
		} `yaml:"cloudinary"`

		S3 struct {
			Region        string `yaml:"region" env:"S3_REGION"`
			Bucket        string `yaml:"bucket" env:"S3_BUCKET"`
			AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY"`
			SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY"`
			Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT"`
			PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
			KeyPrefix     string `yaml:"key_prefix" env:"S3_KEY_PREFIX"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Mongo.URI = "mongodb://localhost:27017"
	config.Mongo.Database = "campusshare"
	config.Mongo.ConnectTimeout = "10s"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "campusshare.app"

	config.Storage.Provider = "cloudinary"
	config.Storage.Cloudinary.Timeout = "60s"

	config.CORS.AllowedOrigins = []string{"*"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}

	if config.Mongo.Database == "" {
		return fmt.Errorf("mongo database name is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Storage.Provider {
	case "cloudinary":
		if config.Storage.Cloudinary.CloudName == "" {
			return fmt.Errorf("cloudinary cloud name is required")
		}
		if config.Storage.Cloudinary.UploadPreset == "" {
			return fmt.Errorf("cloudinary upload preset is required")
		}
	case "s3":
		if config.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if config.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", config.Storage.Provider)
	}

	return nil
}

// Duration parses a duration setting, falling back when the value is empty
// or malformed. Settings that reach here have already passed validation.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
