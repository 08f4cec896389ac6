// config.go - Handles configuration for the project

package config // Declares the package name

import ( // Import required packages
	"errors"        // For required-setting errors
	"math"          // For rejecting NaN and Inf settings
	"os"            // For reading environment variables
	"path/filepath" // For the default intake directory
	"strconv"       // For numeric settings
	"time"          // For durations

	"github.com/joho/godotenv" // Optional .env file support
)

type Config struct { // Config struct holds all configuration values
	Port           string        // HTTP listen port
	DatabaseURL    string        // SQLite path or postgres:// URL (required)
	SessionSecret  string        // Signs session and CSRF cookies (required)
	SessionMaxAge  int           // Session lifetime in seconds
	SecureCookies  bool          // Mark cookies Secure (HTTPS deployments)
	BaseURL        string        // Public URL used in password reset links
	LogLevel       string        // logrus level name
	UploadDir      string        // Durable local storage for uploaded models
	IntakeDir      string        // Temporary intake storage for incoming uploads
	StorageBackend string        // "local" or "s3"
	S3Bucket       string        // Bucket for the s3 backend
	S3Region       string        // Region for the s3 backend
	S3Endpoint     string        // S3-compatible endpoint (MinIO etc.)
	S3AccessKey    string        // Static access key
	S3SecretKey    string        // Static secret key
	MQTTBroker     string        // MQTT broker address, empty disables upload events
	MQTTTopic      string        // Topic for upload events
	SellersFile    string        // Candidate seller list for bids
	CandidateSrc   string        // "file" or "users"
	BasePrice      float64       // Price returned by the fixed resolver
	PriceFeedURL   string        // XML price feed, empty uses BasePrice
	SMTPHost       string        // SMTP host, empty logs reset links instead of mailing
	SMTPPort       string        // SMTP port
	SMTPUsername   string        // SMTP user
	SMTPPassword   string        // SMTP password
	MailFrom       string        // Sender address for reset mails
	PurgeSchedule  string        // cron schedule for the cleanup job
	ResetTokenTTL  time.Duration // Lifetime of a password reset token
}

var ( // Errors for missing required settings
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required")
	ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")
)

func Load() *Config { // Load reads config from environment variables or uses defaults
	_ = godotenv.Load() // A missing .env file is fine

	return &Config{
		Port:           getEnv("PORT", "3000"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionMaxAge:  getEnvInt("SESSION_MAX_AGE", 14*24*60*60),
		SecureCookies:  getEnvBool("SECURE_COOKIES", false),
		BaseURL:        getEnv("BASE_URL", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		IntakeDir:      getEnv("INTAKE_DIR", filepath.Join(os.TempDir(), "plasticity-intake")),
		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		S3Bucket:       getEnv("S3_BUCKET", "plasticity"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", "http://127.0.0.1:9000"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		MQTTBroker:     getEnv("MQTT_BROKER", ""),
		MQTTTopic:      getEnv("MQTT_TOPIC", "plasticity/uploads"),
		SellersFile:    getEnv("SELLERS_FILE", "data/sellers.json"),
		CandidateSrc:   getEnv("CANDIDATE_SOURCE", "file"),
		BasePrice:      getEnvFloat("BASE_PRICE", 10.00),
		PriceFeedURL:   getEnv("PRICE_FEED_URL", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@plasticity.local"),
		PurgeSchedule:  getEnv("PURGE_SCHEDULE", "@hourly"),
		ResetTokenTTL:  getEnvDuration("RESET_TOKEN_TTL", time.Hour),
	}
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.SessionSecret == "" {
		return ErrMissingSessionSecret
	}
	return nil
}

func getEnv(key, fallback string) string { // Helper to get env var or fallback
	if value := os.Getenv(key); value != "" { // If env var is set, use it
		return value
	}
	return fallback // Otherwise, use fallback value
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
