package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	LogLevel    string

	DB struct {
		Type     string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port           string
		GinMode        string
		RequestTimeout time.Duration
	}

	Upload struct {
		Backend     string
		Dir         string
		MaxFileSize int64
	}

	Storage struct {
		Endpoint      string
		AccessKey     string
		SecretKey     string
		Bucket        string
		UseSSL        bool
		PublicBaseURL string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Auth struct {
		JWTSecret string
		Issuer    string
		TokenTTL  time.Duration
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")
	config.LogLevel = getEnv("LOG_LEVEL", "info")

	config.DB.Type = getEnv("STORAGE_TYPE", "postgres")
	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "wisha")
	config.DB.Password = getEnv("DB_PASSWORD", "wisha_password")
	config.DB.Name = getEnv("DB_NAME", "wisha_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second)

	config.Upload.Backend = getEnv("UPLOAD_BACKEND", "minio")
	config.Upload.Dir = getEnv("UPLOADS_DIR", "./uploads")
	config.Upload.MaxFileSize = getEnvAsInt64("MAX_FILE_SIZE", 52428800)

	config.Storage.Endpoint = getEnv("STORAGE_ENDPOINT", "localhost:9000")
	config.Storage.AccessKey = getEnv("STORAGE_ACCESS_KEY", "minioadmin")
	config.Storage.SecretKey = getEnv("STORAGE_SECRET_KEY", "minioadmin")
	config.Storage.Bucket = getEnv("STORAGE_BUCKET", "wisha-bucket")
	config.Storage.UseSSL = getEnvAsBool("STORAGE_USE_SSL", false)
	config.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_URL", "")

	config.Redis.Addr = getEnv("REDIS_ADDR", "")
	config.Redis.Password = getEnv("REDIS_PASSWORD", "")
	config.Redis.DB = int(getEnvAsInt64("REDIS_DB", 0))

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "change-me-in-production")
	config.Auth.Issuer = getEnv("JWT_ISSUER", "wisha-api")
	config.Auth.TokenTTL = getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization,Idempotency-Key")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StoragePublicURL returns the base URL under which bucket objects are publicly readable
func (c *Config) StoragePublicURL() string {
	if c.Storage.PublicBaseURL != "" {
		return strings.TrimRight(c.Storage.PublicBaseURL, "/")
	}
	scheme := "http"
	if c.Storage.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.Storage.Endpoint + "/" + c.Storage.Bucket
}

// SplitList splits a comma separated configuration value
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
