package initializers

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kariqs/tableside/utils"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	CookieSecure   bool

	BackendURL     string
	BackendTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	CartTTL          time.Duration
	SessionTTL       time.Duration
	ValidateSessions bool
	Currency         string

	JWTSecret     string
	AdminTokenTTL time.Duration

	MenuBreakerFailures uint32
	MenuBreakerTimeout  time.Duration

	// Optional subsystems. An empty value disables the subsystem.
	DatabaseDSN     string
	RabbitMQURL     string
	S3Bucket        string
	StripeSecretKey string
	StripeBaseURL   string
	Mail            utils.MailConfig
	StaffEmail      string
	AdminURL        string
}

func LoadConfig() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:5000"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "tableside"),

		CartTTL:          getEnvDuration("CART_TTL", 30*24*time.Hour),
		SessionTTL:       getEnvDuration("SESSION_TTL", 4*time.Hour),
		ValidateSessions: getEnvBool("VALIDATE_SESSIONS", false),
		Currency:         strings.ToLower(getEnv("CURRENCY", "usd")),

		JWTSecret:     getEnv("SECRET", ""),
		AdminTokenTTL: getEnvDuration("ADMIN_TOKEN_TTL", 24*time.Hour),

		MenuBreakerFailures: uint32(getEnvInt("MENU_BREAKER_FAILURES", 5)),
		MenuBreakerTimeout:  getEnvDuration("MENU_BREAKER_TIMEOUT", 30*time.Second),

		DatabaseDSN:     getEnv("DB_DSN", ""),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripeBaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
		Mail: utils.MailConfig{
			From:     getEnv("FROM_EMAIL", ""),
			Password: getEnv("FROM_EMAIL_PASSWORD", ""),
			Host:     getEnv("FROM_EMAIL_SMTP", ""),
			Address:  getEnv("SMTP_ADDRESS", ""),
		},
		StaffEmail: getEnv("STAFF_EMAIL", ""),
		AdminURL:   getEnv("ADMIN_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
