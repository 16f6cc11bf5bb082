package config

import (
	"fmt"
	"os"
)

// Config carries everything read from the environment at boot. Load it
// once in main and pass it down; nothing else reads os.Getenv.
type Config struct {
	HTTPAddr  string
	JWTSecret string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	// UploadDir is the root of the disk-backed attachment store.
	UploadDir string

	// Telegram admin alerts are enabled only when both values are set.
	TelegramBotToken string
	TelegramChatID   string
}

// Load reads the configuration from environment variables, applying
// defaults suitable for local development.
func Load() Config {
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		JWTSecret: getenv("JWT_SECRET", ""),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "user"),
		DBPassword: getenv("DB_PASSWORD", "password"),
		DBName:     getenv("DB_NAME", "gripelogger"),
		DBPort:     getenv("DB_PORT", "5432"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		UploadDir: getenv("UPLOAD_DIR", "uploads"),

		TelegramBotToken: getenv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getenv("TELEGRAM_CHAT_ID", ""),
	}
}

// DSN builds the PostgreSQL connection string for GORM.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
