package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"vim-audiosync/internal/models"
)

const (
	JobStoreMemory   = "memory"
	JobStoreRedis    = "redis"
	JobStorePostgres = "postgres"
)

type Config struct {
	// Sync engine
	SyncEngineURL      string
	SyncEngineAPIKey   string
	EngineWebhookToken string

	// Payments
	PaymentRequired    bool
	PayPerJobAmount    string
	PayPalClientID     string
	PayPalClientSecret string
	PayPalAPIBase      string
	PayPalPlanIndie    string
	PayPalPlanStudio   string
	PayPalPlanPro      string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string
	DeleteSourceMedia      bool

	// Job store
	JobStore      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JobTTL        time.Duration
	DatabaseURL   string

	// Server
	Port        string
	Environment string
	BaseURL     string
	MaxUploadMB int64
	LogLevel    string
}

func Load() (*Config, error) {
	cfg := &Config{
		SyncEngineURL:      getEnv("SYNC_ENGINE_URL", ""),
		SyncEngineAPIKey:   getEnv("SYNC_ENGINE_API_KEY", ""),
		EngineWebhookToken: getEnv("ENGINE_WEBHOOK_TOKEN", ""),

		PaymentRequired:    getEnvBool("PAYMENT_REQUIRED", true),
		PayPerJobAmount:    getEnv("PAY_PER_JOB_AMOUNT", "7.00"),
		PayPalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		PayPalAPIBase:      getEnv("PAYPAL_API_BASE", "https://api-m.sandbox.paypal.com"),
		PayPalPlanIndie:    getEnv("PAYPAL_PLAN_INDIE", ""),
		PayPalPlanStudio:   getEnv("PAYPAL_PLAN_STUDIO", ""),
		PayPalPlanPro:      getEnv("PAYPAL_PLAN_PRO", ""),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "audiosync-media"),
		DeleteSourceMedia:      getEnvBool("DELETE_SOURCE_MEDIA", false),

		JobStore:      strings.ToLower(getEnv("JOB_STORE", JobStoreMemory)),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		JobTTL:        time.Duration(getEnvInt("JOB_TTL_SECONDS", 7*24*60*60)) * time.Second,
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		MaxUploadMB: int64(getEnvInt("MAX_UPLOAD_MB", 8*1024)),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SyncEngineURL == "" {
		return fmt.Errorf("SYNC_ENGINE_URL is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if amount, err := strconv.ParseFloat(c.PayPerJobAmount, 64); err != nil || amount <= 0 {
		return fmt.Errorf("PAY_PER_JOB_AMOUNT must be a positive decimal, got %q", c.PayPerJobAmount)
	}
	if c.PayPalClientSecret != "" && c.PayPalClientID == "" {
		return fmt.Errorf("PAYPAL_CLIENT_ID is required when PAYPAL_CLIENT_SECRET is set")
	}
	if c.IsProduction() && c.PaymentRequired && !c.VerifiesPayPalOrders() {
		return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required in production when PAYMENT_REQUIRED is on")
	}
	switch c.JobStore {
	case JobStoreMemory:
	case JobStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for JOB_STORE=redis")
		}
	case JobStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for JOB_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown JOB_STORE %q", c.JobStore)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// VerifiesPayPalOrders reports whether mark-paid checks orders against PayPal.
func (c *Config) VerifiesPayPalOrders() bool {
	return c.PayPalClientID != "" && c.PayPalClientSecret != ""
}

// SubscriptionTiers returns the three monthly plans with their injected PayPal plan ids.
func (c *Config) SubscriptionTiers() []models.SubscriptionTier {
	return []models.SubscriptionTier{
		{
			Key:      "indie",
			Name:     "Indie Creator",
			Price:    "$24",
			Summary:  "For solo editors, micro-budget films, and YouTubers.",
			Features: []string{"Up to 50 sync jobs / month", "~300 GB transfer", "Standard processing priority", "Up to 6 audio tracks per clip"},
			PlanID:   c.PayPalPlanIndie,
		},
		{
			Key:      "studio",
			Name:     "Studio",
			Price:    "$79",
			Summary:  "For boutique production companies and small agencies.",
			Features: []string{"Up to 250 sync jobs / month", "~1 TB transfer", "Higher queue priority", "3–5 team seats"},
			PlanID:   c.PayPalPlanStudio,
		},
		{
			Key:      "pro",
			Name:     "Pro Studio",
			Price:    "$199",
			Summary:  "For serious series work, agency pipelines, and high-volume teams.",
			Features: []string{"Up to 750 sync jobs / month", "5+ TB transfer", "Highest shared priority", "Up to 15 seats + API access"},
			PlanID:   c.PayPalPlanPro,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
