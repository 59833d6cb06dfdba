package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	UploadWorkers     int
	UploadMaxSizeMB   int64
	UploadMaxAttempts int
	UploadLease       time.Duration

	UseS3         bool
	S3Bucket      string
	S3Region      string
	CloudFrontURL string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "eventsphere"),

		UploadWorkers:     getEnvInt("UPLOAD_WORKERS", 4),
		UploadMaxSizeMB:   int64(getEnvInt("UPLOAD_MAX_SIZE_MB", 10)),
		UploadMaxAttempts: getEnvInt("UPLOAD_MAX_ATTEMPTS", 3),
		UploadLease:       time.Duration(getEnvInt("UPLOAD_LEASE_SECONDS", 60)) * time.Second,

		UseS3:         getEnv("USE_S3", "") == "true",
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", ""),
		CloudFrontURL: getEnv("CLOUDFRONT_URL", ""),
	}

	log.Println("✅ Config loaded")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
