package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Runtime
	Env string

	// API
	APIBaseURL      string
	APITimeout      time.Duration
	APIRateLimitRPS int
	UserAgent       string

	// Session
	SessionFile       string
	MaxRefreshRetries int

	// Realtime
	WSURL              string
	WSReconnectDelay   time.Duration
	WSHeartbeat        time.Duration
	NotificationPrefix string

	// Drafts
	DraftBackend string // file or redis
	DraftDir     string
	DraftTTL     time.Duration
	RedisURL     string

	// Media upload (unsigned preset)
	MediaProvider     string // preset or s3
	MediaUploadURL    string
	MediaUploadPreset string
	MediaFolder       string
	MediaMaxSide      int

	// Media upload (S3 / MinIO / R2)
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// Geocoding
	GeocodeBaseURL string
	GeocodeRPS     int

	// Observability
	MetricsAddr string
	LogLevel    string

	// Localization
	Language string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Env: getEnv("ENV", "development"),

		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api/v1"), "/"),
		APITimeout:      parseDuration(getEnv("API_TIMEOUT", "15s"), 15*time.Second),
		APIRateLimitRPS: parseInt(getEnv("API_RATE_LIMIT_RPS", "0"), 0),
		UserAgent:       getEnv("USER_AGENT", "homestay-client/1.0"),

		SessionFile:       getEnv("SESSION_FILE", defaultSessionFile()),
		MaxRefreshRetries: parseInt(getEnv("MAX_REFRESH_RETRIES", "4"), 4),

		WSURL:              getEnv("WS_URL", "ws://localhost:8080/ws"),
		WSReconnectDelay:   parseDuration(getEnv("WS_RECONNECT_DELAY", "5s"), 5*time.Second),
		WSHeartbeat:        parseDuration(getEnv("WS_HEARTBEAT", "10s"), 10*time.Second),
		NotificationPrefix: getEnv("NOTIFICATION_TOPIC_PREFIX", "/topic/notifications/"),

		DraftBackend: getEnv("DRAFT_BACKEND", "file"),
		DraftDir:     getEnv("DRAFT_DIR", ".homestay/drafts"),
		DraftTTL:     parseDuration(getEnv("DRAFT_TTL", "720h"), 720*time.Hour),
		RedisURL:     getEnv("REDIS_URL", ""),

		MediaProvider:     getEnv("MEDIA_PROVIDER", "preset"),
		MediaUploadURL:    getEnv("MEDIA_UPLOAD_URL", ""),
		MediaUploadPreset: getEnv("MEDIA_UPLOAD_PRESET", ""),
		MediaFolder:       getEnv("MEDIA_FOLDER", "listings"),
		MediaMaxSide:      parseInt(getEnv("MEDIA_MAX_SIDE", "2000"), 2000),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "homestay-media"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		GeocodeBaseURL: strings.TrimRight(getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocodeRPS:     parseInt(getEnv("GEOCODE_RPS", "1"), 1),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Language: getEnv("LANGUAGE", "en"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".homestay/session.json"
	}
	return home + "/.homestay/session.json"
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
