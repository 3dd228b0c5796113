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
	Port     string
	AppEnv   string
	DBUrl    string
	LogLevel string
	// Browser origins allowed to call the API with credentials
	CORSAllowedOrigins []string
	// Session tokens
	JWTSecret    string
	JWTTTL       time.Duration
	CookieSecure bool
	// Dates in exports and created_date filters are evaluated in this zone
	TimeZone string
	Location *time.Location
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds  int
	RateLimitLoginThreshold int
	// Upload storage
	StorageDriver     string // "local", "s3" or "minio"
	MediaRoot         string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string // optional, for S3-compatible providers
	S3AccessKeyID     string
	S3SecretKey       string
	MaxUploadBytes    int64
	PhotoMaxDimension int
	// OTLP/HTTP collector host:port; empty disables tracing
	OTelEndpoint    string
	OTelInsecure    bool
	OTelSampleRatio float64
	// clamd address (host:port or socket path); empty disables upload scanning
	ClamAVAddress string
	// Profile change events; empty brokers disables publishing
	KafkaBrokers []string
	KafkaTopic   string
}

func LoadConfig() (*Config, error) {
	// Load .env file (local development only, ignored when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		AppEnv:       getEnv("APP_ENV", "development"),
		DBUrl:        getEnv("DATABASE_URL", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTTTL:       time.Duration(getEnvInt("JWT_TTL_MINUTES", 60*24)) * time.Minute,
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		TimeZone:     getEnv("TIME_ZONE", "Local"),
		// Comma separated origins
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:  getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold: getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		// Storage
		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
		MediaRoot:         getEnv("MEDIA_ROOT", "./media"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:       getEnv("S3_SECRET_ACCESS_KEY", ""),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_MB", 5)) << 20,
		PhotoMaxDimension: getEnvInt("PHOTO_MAX_DIMENSION", 800),
		ClamAVAddress:     getEnv("CLAMAV_ADDRESS", ""),
		// Tracing
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTelSampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		// Events
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "profiles.updated"),
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Printf("WARNING: unknown TIME_ZONE %q, falling back to Local", cfg.TimeZone)
		loc = time.Local
	}
	cfg.Location = loc

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Login will be unavailable.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// splitList parses a comma separated variable, dropping blanks
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat returns a float environment variable or fallback if not set/invalid
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
