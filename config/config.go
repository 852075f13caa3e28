package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	Password   PasswordConfig
	MQ         MQConfig
	Storage    StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// RedisConfig configures the session allowlist store. An empty Addr
// disables cookie sessions entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	// Secret signs session cookies. Required when Redis is configured.
	Secret string

	// TTLHours bounds session lifetime in Redis.
	TTLHours int

	CookieName string
}

type PasswordConfig struct {
	// MinLength is the minimum accepted password length.
	MinLength int
}

// MQConfig selects the task-event broker. An empty Backend disables
// event publication.
type MQConfig struct {
	Backend string // "rabbitmq" or "pubsub"
	Topic   string

	RabbitURL       string
	QueueDurable    bool
	QueueAutoDelete bool

	PubSubProjectID string
}

// StorageConfig selects the object store that receives backup uploads.
// An empty Backend keeps backups local only.
type StorageConfig struct {
	Backend string // "minio" or "gcs"
	Bucket  string

	Minio MinioConfig
	GCS   GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "taskmanager"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "taskmanager_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", ""),
			TTLHours:   getEnvInt("SESSION_TTL_HOURS", 24),
			CookieName: getEnv("SESSION_COOKIE_NAME", "sessionid"),
		},
		Password: PasswordConfig{
			MinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
		},
		MQ: MQConfig{
			Backend:         getEnv("MQ_BACKEND", ""),
			Topic:           getEnv("MQ_TOPIC", "task-events"),
			RabbitURL:       getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTODELETE", false),
			PubSubProjectID: getEnv("PUBSUB_PROJECT_ID", ""),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", ""),
			Bucket:  getEnv("STORAGE_BUCKET", "taskmanager-backups"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		return value == "1" || value == "true" || value == "yes"
	}
	return defaultValue
}
