package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string `env:"DATABASE_URL"`
	Port               string `env:"PORT" envDefault:"8080"`
	GoEnv              string `env:"GO_ENV" envDefault:"development"`
	Auth0Domain        string `env:"AUTH0_DOMAIN"`
	Auth0Audience      string `env:"AUTH0_AUDIENCE"`
	JWTSecret          string `env:"JWT_SECRET"`
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSS3Bucket        string `env:"AWS_S3_BUCKET"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	UploadDir          string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Lifecycle policies
	AutoRejectOnAccept bool `env:"AUTO_REJECT_ON_ACCEPT" envDefault:"false"`
	MonotonicProgress  bool `env:"MONOTONIC_PROGRESS" envDefault:"true"`

	// EnvFile is the dotenv file the configuration was read from, empty when
	// only the process environment was used.
	EnvFile string `env:"-"`
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// Try to load environment-specific file first, then .env.
	// In production variables are set directly, so missing files are fine.
	loadedFrom := ""
	envFile := fmt.Sprintf(".env.%s", goEnv)
	if err := godotenv.Load(envFile); err == nil {
		loadedFrom = envFile
	} else if err := godotenv.Load(); err == nil {
		loadedFrom = ".env"
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.EnvFile = loadedFrom

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !c.IsTest() && c.Auth0Domain == "" && c.JWTSecret == "" {
		return fmt.Errorf("either AUTH0_DOMAIN or JWT_SECRET is required")
	}
	if c.Auth0Domain != "" && c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required when AUTH0_DOMAIN is set")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// UsesS3 reports whether inspiration images go to S3 rather than local disk
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS into individual origins
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// GetConfig returns the configuration loaded by Load
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}
