package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// WidgetConfigPath is the directory for the file-backed widget config
	// store used when no database is configured.
	WidgetConfigPath   string
	WidgetConfigAPIKey string
	WidgetConfigTTL    time.Duration
	AdminJWTSecret     string
	DefaultProjectID   string
	ContextWindow      int
	AITimeout          time.Duration
	SessionIdleTimeout time.Duration
	SessionSweepPeriod time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int

	GeminiAPIKey        string
	GeminiModel         string
	BedrockModelID      string
	// ArchiveLabelModelID labels archived transcripts; empty uses keyword rules.
	ArchiveLabelModelID string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	CRMBaseURL      string
	CRMTimeout      time.Duration
	IPLookupURL     string
	IPLookupTimeout time.Duration
	GeoLookupURL    string
	// LocalAPIBaseURL, when set, sends analytics leads over HTTP instead of
	// recording them in-process.
	LocalAPIBaseURL string

	AMQPURL      string
	AMQPExchange string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	LeadNotifyEmails  []string
	NotifyTimezone    string

	ArchiveBucket string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", getEnv("API_PORT", "4000")),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		WidgetConfigPath:   getEnv("WIDGET_CONFIG_PATH", "data"),
		WidgetConfigAPIKey: getEnv("WIDGET_CONFIG_API_KEY", ""),
		WidgetConfigTTL:    getEnvAsDuration("WIDGET_CONFIG_TTL", 5*time.Minute),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		DefaultProjectID:   getEnv("DEFAULT_PROJECT_ID", "5796"),
		ContextWindow:      getEnvAsInt("CONTEXT_WINDOW", 10),
		AITimeout:          getEnvAsDuration("AI_TIMEOUT", 20*time.Second),
		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionSweepPeriod: getEnvAsDuration("SESSION_SWEEP_PERIOD", time.Minute),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		ArchiveLabelModelID: getEnv("ARCHIVE_LABEL_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CRMBaseURL:      getEnv("CRM_BASE_URL", ""),
		CRMTimeout:      getEnvAsDuration("CRM_TIMEOUT", 15*time.Second),
		IPLookupURL:     getEnv("IP_LOOKUP_URL", ""),
		IPLookupTimeout: getEnvAsDuration("IP_LOOKUP_TIMEOUT", 3*time.Second),
		GeoLookupURL:    getEnv("GEO_LOOKUP_URL", ""),
		LocalAPIBaseURL: getEnv("LOCAL_API_BASE_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "seher.events"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Seher Leads"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		LeadNotifyEmails:  getEnvAsList("LEAD_NOTIFY_EMAIL", nil),
		NotifyTimezone:    getEnv("NOTIFY_TIMEZONE", "Asia/Kolkata"),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),
	}
}

// AllowsAnyOrigin reports whether ALLOWED_ORIGINS contains "*".
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
