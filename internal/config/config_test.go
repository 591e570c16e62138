package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vim-audiosync/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SYNC_ENGINE_URL", "http://engine.local")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "publishable")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.PaymentRequired)
	assert.Equal(t, "7.00", cfg.PayPerJobAmount)
	assert.Equal(t, config.JobStoreMemory, cfg.JobStore)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(8192), cfg.MaxUploadMB)
	assert.Equal(t, 7*24*time.Hour, cfg.JobTTL)
	assert.False(t, cfg.VerifiesPayPalOrders())
}

func TestLoad_PaymentSwitch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENT_REQUIRED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.PaymentRequired)
}

func TestLoad_MissingEngine(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_ENGINE_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNC_ENGINE_URL")
}

func TestValidate_JobStore(t *testing.T) {
	base := config.Config{
		SyncEngineURL:          "http://engine.local",
		SupabaseURL:            "https://project.supabase.co",
		SupabasePublishableKey: "key",
		PayPerJobAmount:        "7.00",
		MaxUploadMB:            1,
	}

	redis := base
	redis.JobStore = config.JobStoreRedis
	assert.ErrorContains(t, redis.Validate(), "REDIS_ADDR")

	pg := base
	pg.JobStore = config.JobStorePostgres
	assert.ErrorContains(t, pg.Validate(), "DATABASE_URL")

	unknown := base
	unknown.JobStore = "dynamo"
	assert.ErrorContains(t, unknown.Validate(), "unknown JOB_STORE")

	bad := base
	bad.JobStore = config.JobStoreMemory
	bad.PayPerJobAmount = "free"
	assert.ErrorContains(t, bad.Validate(), "PAY_PER_JOB_AMOUNT")
}

func TestSubscriptionTiers(t *testing.T) {
	cfg := &config.Config{PayPalPlanIndie: "P-INDIE", PayPalPlanPro: "P-PRO"}

	tiers := cfg.SubscriptionTiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, "P-INDIE", tiers[0].PlanID)
	assert.True(t, tiers[0].Configured())
	assert.False(t, tiers[1].Configured())
	assert.Equal(t, "Pro Studio", tiers[2].Name)
}

func TestValidate_ProductionPaymentNeedsPayPal(t *testing.T) {
	cfg := config.Config{
		SyncEngineURL:          "http://engine.local",
		SupabaseURL:            "https://project.supabase.co",
		SupabasePublishableKey: "key",
		PayPerJobAmount:        "7.00",
		MaxUploadMB:            1,
		JobStore:               config.JobStoreMemory,
		Environment:            "production",
		PaymentRequired:        true,
	}
	assert.ErrorContains(t, cfg.Validate(), "PAYPAL_CLIENT_SECRET")

	cfg.PayPalClientID, cfg.PayPalClientSecret = "id", "secret"
	assert.NoError(t, cfg.Validate())

	cfg.PayPalClientID, cfg.PayPalClientSecret = "", ""
	cfg.PaymentRequired = false
	assert.NoError(t, cfg.Validate())
}
