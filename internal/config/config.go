package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App     AppConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	MinIO   MinIOConfig
	Storage StorageConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	DefaultLang string // vi, en
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  int // seconds, cho connect + ping
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // storefront
	UseSSL    bool   // false for local
}

type StorageConfig struct {
	// Max kích thước một ảnh variant trước khi resize (bytes)
	MaxImageBytes int
	// Cạnh dài nhất sau khi normalize
	MaxImageEdge int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront API"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			DefaultLang: getEnv("APP_DEFAULT_LANG", "vi"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "storefront"),
			Timeout:  getEnvInt("MONGO_TIMEOUT", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "storefront"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Storage: StorageConfig{
			MaxImageBytes: getEnvInt("STORAGE_MAX_IMAGE_BYTES", 5*1024*1024),
			MaxImageEdge:  getEnvInt("STORAGE_MAX_IMAGE_EDGE", 1600),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	// Production environment phải có credentials thật
	if c.App.Environment == "production" {
		if c.MinIO.AccessKey == "minioadmin" {
			return fmt.Errorf("MINIO_ACCESS_KEY must be set in production")
		}
		if c.Redis.Password == "" {
			fmt.Println("WARNING: Redis password not set in production")
		}
	}

	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI must not be empty")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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
