package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Database DatabaseConfig
	Storage  StorageConfig
	AI       AIConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Jobs     JobsConfig
	Timeouts TimeoutConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Env         string
	LogLevel    string
	CORSOrigins string
}

type UploadConfig struct {
	TempDir     string
	MaxFileSize int64 // bytes
	// AIThumbnail lets an upload without a thumbnail fall back to a composed frame.
	AIThumbnail bool
}

type DatabaseConfig struct {
	Driver      string // mongo, postgres, mysql, memory
	MongoURI    string
	MongoDB     string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	AutoMigrate bool
}

type StorageConfig struct {
	Driver        string // local, s3
	Dir           string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AuthConfig struct {
	AccessTokenSecret string
}

type RedisConfig struct {
	Host string
	Port string
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JobsConfig struct {
	OrphanSweepCron string
	TempCleanupCron string
	TempMaxAge      time.Duration
	SweepWorkers    int
}

type TimeoutConfig struct {
	MediaUpload time.Duration
	Inference   time.Duration
	FrameFetch  time.Duration
	FFmpeg      time.Duration
}

// LoadConfig reads the process environment; a .env file in the working
// directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "8000")
	config := &Config{
		Server: ServerConfig{
			Port:        port,
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Env:         getEnv("APP_ENV", "production"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Upload: UploadConfig{
			TempDir:     getEnv("UPLOAD_TEMP_DIR", filepath.Join("public", "temp")),
			MaxFileSize: getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 1024*1024*1024), // 1GB
			AIThumbnail: getEnvAsBool("AI_THUMBNAIL_FALLBACK", true),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", "mongo")),
			MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDB:     getEnv("MONGO_DATABASE", "videohub"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			DBName:      getEnv("DB_NAME", "videohub"),
			AutoMigrate: getEnvAsBool("RUN_AUTO_MIGRATION", true),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			Dir:           getEnv("STORAGE_DIR", "media"),
			PublicBaseURL: strings.TrimRight(getEnv("MEDIA_PUBLIC_BASE_URL", "http://localhost:"+port+"/media"), "/"),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		},
		AI: AIConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			BaseURL: strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"), "/"),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Auth: AuthConfig{
			AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", ""),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", ""),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		Jobs: JobsConfig{
			OrphanSweepCron: getEnv("ORPHAN_SWEEP_CRON", "0 */5 * * * *"),
			TempCleanupCron: getEnv("TEMP_CLEANUP_CRON", "0 0 * * * *"),
			TempMaxAge:      getEnvAsDuration("TEMP_MAX_AGE", 24*time.Hour),
			SweepWorkers:    int(getEnvAsInt64("ORPHAN_SWEEP_WORKERS", 4)),
		},
		Timeouts: TimeoutConfig{
			MediaUpload: getEnvAsDuration("MEDIA_UPLOAD_TIMEOUT", 5*time.Minute),
			Inference:   getEnvAsDuration("INFERENCE_TIMEOUT", 60*time.Second),
			FrameFetch:  getEnvAsDuration("FRAME_FETCH_TIMEOUT", 15*time.Second),
			FFmpeg:      getEnvAsDuration("FFMPEG_TIMEOUT", 30*time.Second),
		},
	}

	if err := os.MkdirAll(config.Upload.TempDir, 0755); err != nil {
		panic(err)
	}
	if config.Storage.Driver == "local" {
		if err := os.MkdirAll(config.Storage.Dir, 0755); err != nil {
			panic(err)
		}
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
