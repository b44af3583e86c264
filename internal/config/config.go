package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Attachment slot names, shared with the attachment store
const (
	SlotSignatures = "signatures"
	SlotDataImages = "data_images"
	SlotStudies    = "studies"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Env         string
	Port        string
	BodyLimitMB int
	LogLevel    string

	// Database configuration
	DBType               string // mysql, mariadb, postgres, sqlite, sqlite-nocgo, sqlserver
	DBHost               string
	DBPort               string
	DBDatabase           string
	DBAppUser            string
	DBAppPassword        string
	DBAppConnectionLimit int
	DBUser               string
	DBPassword           string
	DBConnectionLimit    int

	// Authorizer configuration
	AuthzURL         string
	AuthzClientID    string
	AuthzRedirectURL string
	AuthCookie       string

	// Attachment storage
	Attachments AttachmentConfig
}

// AttachmentConfig describes where each attachment slot stores its files
// and how the public URL of a stored file is built.
type AttachmentConfig struct {
	Driver string // fs or s3
	Slots  map[string]SlotConfig
	S3     S3Config
}

// SlotConfig is the storage location of one attachment slot
type SlotConfig struct {
	Dir     string
	BaseURL string
}

// S3Config holds the S3-compatible backend settings
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Load loads configuration from environment variables, after applying the
// dotenv file named by ENV_FILE (default .env) when it exists.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Env:                  getEnv("ENV", "development"),
		Port:                 getEnv("PORT", "3000"),
		BodyLimitMB:          getEnvAsInt("BODY_LIMIT_MB", 20),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DBType:               getEnv("DB_TYPE", "mysql"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBDatabase:           getEnv("DB_DATABASE", ""),
		DBAppUser:            getEnv("DB_APP_USER", ""),
		DBAppPassword:        getEnv("DB_APP_PASSWORD", ""),
		DBAppConnectionLimit: getEnvAsInt("DB_APP_CONNECTION_LIMIT", 5),
		DBUser:               getEnv("DB_USER", ""),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:    getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		AuthzURL:             getEnv("AUTHZ_URL", ""),
		AuthzClientID:        getEnv("AUTHZ_CLIENT_ID", ""),
		AuthzRedirectURL:     getEnv("AUTHZ_REDIRECT_URL", ""),
		AuthCookie:           getEnv("AUTH_COOKIE", "Authorization"),
		Attachments: AttachmentConfig{
			Driver: strings.ToLower(getEnv("BLOB_DRIVER", "fs")),
			Slots: map[string]SlotConfig{
				SlotSignatures: {
					Dir:     getEnv("SIGNATURES_DIR", "data/signatures"),
					BaseURL: getEnv("SIGNATURES_BASE_URL", ""),
				},
				SlotDataImages: {
					Dir:     getEnv("DATA_IMAGES_DIR", "data/data_images"),
					BaseURL: getEnv("DATA_IMAGES_BASE_URL", ""),
				},
				SlotStudies: {
					Dir:     getEnv("STUDIES_DIR", "data/studies"),
					BaseURL: getEnv("STUDIES_BASE_URL", ""),
				},
			},
			S3: S3Config{
				Bucket:          getEnv("S3_BUCKET", ""),
				Region:          getEnv("S3_REGION", "us-east-1"),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				PathStyle:       getEnvAsBool("S3_PATH_STYLE", false),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsSQLite reports whether the configured database is a sqlite file
func (cfg *Config) IsSQLite() bool {
	return cfg.DBType == "sqlite" || cfg.DBType == "sqlite-nocgo"
}

// Validate checks the settings every binary needs
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if !cfg.IsSQLite() {
		if cfg.DBAppUser == "" {
			return fmt.Errorf("DB_APP_USER is required")
		}
		if cfg.DBUser == "" {
			return fmt.Errorf("DB_USER is required")
		}
	}
	return cfg.Attachments.Validate()
}

// ValidateServer checks the settings only the HTTP server needs
func (cfg *Config) ValidateServer() error {
	if cfg.AuthzURL == "" {
		return fmt.Errorf("AUTHZ_URL is required")
	}
	if cfg.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	return nil
}

// Validate checks that every slot can be stored and addressed
func (ac AttachmentConfig) Validate() error {
	switch ac.Driver {
	case "fs", "s3":
	default:
		return fmt.Errorf("unsupported BLOB_DRIVER: %s", ac.Driver)
	}
	if ac.Driver == "s3" && ac.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for the s3 driver")
	}
	for _, name := range []string{SlotSignatures, SlotDataImages, SlotStudies} {
		slot, ok := ac.Slots[name]
		if !ok {
			return fmt.Errorf("attachment slot %s is not configured", name)
		}
		if slot.BaseURL == "" {
			return fmt.Errorf("base URL for attachment slot %s is required", name)
		}
		if ac.Driver == "fs" && slot.Dir == "" {
			return fmt.Errorf("directory for attachment slot %s is required", name)
		}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
