package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KafkaBrokers  []string
	TokenSecret   string

	// BlobBackend selects "s3" or "local".
	BlobBackend string
	BlobDir     string
	S3Bucket    string
	S3Prefix    string
}

// Load reads .env if present and assembles the runtime configuration from
// the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		TokenSecret:   os.Getenv("ACCESS_TOKEN_SECRET"),
		BlobBackend:   getEnv("BLOB_BACKEND", "local"),
		BlobDir:       getEnv("BLOB_DIR", "blobs"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Prefix:      os.Getenv("S3_PREFIX"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
