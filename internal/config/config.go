package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string // NOTEHUB_DATABASE_URL (required)
	HTTPAddr    string // NOTEHUB_HTTP_ADDR (default ":8080")
	NATSURL     string // NOTEHUB_NATS_URL (optional, empty = no external events)
	AuthToken   string // NOTEHUB_AUTH_TOKEN (optional, empty = auth disabled)
	BusCapacity int    // NOTEHUB_BUS_CAPACITY (default 512)

	// Backup settings
	BackupInterval   time.Duration // NOTEHUB_BACKUP_INTERVAL (default 3m; 0 = disabled)
	BackupS3Bucket   string        // NOTEHUB_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // NOTEHUB_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // NOTEHUB_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Key      string        // NOTEHUB_BACKUP_S3_KEY (default "notehub/backup.jsonl")
	BackupGitRepo    string        // NOTEHUB_BACKUP_GIT_REPO (enables git when set; path to clone)
	BackupGitFile    string        // NOTEHUB_BACKUP_GIT_FILE (default "notehub.jsonl")
	BackupGitBranch  string        // NOTEHUB_BACKUP_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("NOTEHUB_DATABASE_URL"),
		HTTPAddr:         envOrDefault("NOTEHUB_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("NOTEHUB_NATS_URL"),
		AuthToken:        os.Getenv("NOTEHUB_AUTH_TOKEN"),
		BackupS3Bucket:   os.Getenv("NOTEHUB_BACKUP_S3_BUCKET"),
		BackupS3Endpoint: os.Getenv("NOTEHUB_BACKUP_S3_ENDPOINT"),
		BackupS3Region:   envOrDefault("NOTEHUB_BACKUP_S3_REGION", "us-east-1"),
		BackupS3Key:      envOrDefault("NOTEHUB_BACKUP_S3_KEY", "notehub/backup.jsonl"),
		BackupGitRepo:    os.Getenv("NOTEHUB_BACKUP_GIT_REPO"),
		BackupGitFile:    envOrDefault("NOTEHUB_BACKUP_GIT_FILE", "notehub.jsonl"),
		BackupGitBranch:  envOrDefault("NOTEHUB_BACKUP_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("NOTEHUB_DATABASE_URL is required")
	}

	capacityStr := envOrDefault("NOTEHUB_BUS_CAPACITY", "512")
	capacity, err := strconv.Atoi(capacityStr)
	if err != nil || capacity <= 0 {
		return nil, fmt.Errorf("NOTEHUB_BUS_CAPACITY must be a positive integer, got %q", capacityStr)
	}
	c.BusCapacity = capacity

	intervalStr := envOrDefault("NOTEHUB_BACKUP_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("NOTEHUB_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
