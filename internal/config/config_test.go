package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
		assert.Equal(t, "whsec_123", cfg.StripeWebhookSecret)
		assert.Equal(t, "test", cfg.AppEnv)
	})

	t.Run("Pricing defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("TAX_RATE", "")
		t.Setenv("FREE_SHIPPING_THRESHOLD", "")
		t.Setenv("SHIPPING_FLAT_FEE", "")

		cfg := LoadConfig()

		assert.Equal(t, 0.08, cfg.TaxRate)
		assert.Equal(t, 100.0, cfg.FreeShippingThreshold)
		assert.Equal(t, 15.0, cfg.ShippingFlatFee)
	})

	t.Run("Pricing overrides", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("TAX_RATE", "0.1")
		t.Setenv("FREE_SHIPPING_THRESHOLD", "50")
		t.Setenv("SHIPPING_FLAT_FEE", "9.99")

		cfg := LoadConfig()

		assert.Equal(t, 0.1, cfg.TaxRate)
		assert.Equal(t, 50.0, cfg.FreeShippingThreshold)
		assert.Equal(t, 9.99, cfg.ShippingFlatFee)
	})
}
