package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	TelegramBotToken string
	AdminChatIDs     []int64
	Mongo            MongoConfig
	Storage          StorageConfig
	WhatsApp         WhatsAppConfig
	LogLevel         string
	Environment      string
}

type MongoConfig struct {
	URI      string
	Database string
}

type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

type WhatsAppConfig struct {
	SessionPath string
	QRCodePath  string
}

func Load() (*Config, error) {
	// .env is optional, deployments use plain env vars
	_ = godotenv.Load()

	adminIDsStr := os.Getenv("ADMIN_CHAT_IDS")
	var adminIDs []int64
	if adminIDsStr != "" {
		for _, idStr := range strings.Split(adminIDsStr, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminChatIDs:     adminIDs,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "kaboretech"),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "kaboretech-media"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		WhatsApp: WhatsAppConfig{
			SessionPath: getEnv("WHATSAPP_SESSION_PATH", "whatsapp.db"),
			QRCodePath:  getEnv("WHATSAPP_QR_PATH", "whatsapp-qr.png"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
