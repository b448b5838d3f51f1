package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates the runtime settings of the application.
type Config struct {
	Addr       string
	DBPath     string
	LogLevel   string
	LogFormat  string
	JWTSecret  string
	SessionTTL time.Duration

	Push   PushConfig
	Backup BackupConfig
}

// PushConfig holds the Web Push VAPID credentials. Push is disabled when
// the keys are empty.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// BackupConfig controls the periodic encrypted database snapshot. Backups
// are disabled unless the bucket, credentials, and passphrase are all set.
type BackupConfig struct {
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Passphrase string
	Interval   time.Duration
}

// Load reads configuration from a .env file when present, then from
// environment variables, applying defaults suitable for local use.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		Addr:       getString("MENTALLOAD_ADDR", ":8080"),
		DBPath:     getString("MENTALLOAD_DB_PATH", "mentalload.db"),
		LogLevel:   getString("MENTALLOAD_LOG_LEVEL", "info"),
		LogFormat:  getString("MENTALLOAD_LOG_FORMAT", "text"),
		JWTSecret:  getString("MENTALLOAD_JWT_SECRET", "dev-secret-change-me"),
		SessionTTL: getDuration("MENTALLOAD_SESSION_TTL", 30*24*time.Hour),
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("MENTALLOAD_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("MENTALLOAD_VAPID_PRIVATE_KEY"),
			Subscriber:      getString("MENTALLOAD_VAPID_SUBSCRIBER", "mailto:admin@example.com"),
		},
		Backup: BackupConfig{
			Bucket:     os.Getenv("MENTALLOAD_BACKUP_BUCKET"),
			Region:     getString("MENTALLOAD_BACKUP_REGION", "us-east-1"),
			Endpoint:   os.Getenv("MENTALLOAD_BACKUP_ENDPOINT"),
			AccessKey:  os.Getenv("MENTALLOAD_BACKUP_ACCESS_KEY"),
			SecretKey:  os.Getenv("MENTALLOAD_BACKUP_SECRET_KEY"),
			Passphrase: os.Getenv("MENTALLOAD_BACKUP_PASSPHRASE"),
			Interval:   getDuration("MENTALLOAD_BACKUP_INTERVAL", 24*time.Hour),
		},
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
