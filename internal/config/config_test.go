package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MPESA_ENV", "")
	t.Setenv("MPESA_BASE_URL", "")
	t.Setenv("COUNTRY_CODE", "")

	cfg := Load()

	assert.Equal(t, "sandbox", cfg.Mpesa.Environment)
	assert.Equal(t, "https://sandbox.safaricom.co.ke", cfg.Mpesa.BaseURL)
	assert.Equal(t, "254", cfg.CountryCode)
	assert.Equal(t, 30*time.Second, cfg.Mpesa.Timeout)
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("MPESA_ENV", "production")
	t.Setenv("MPESA_BASE_URL", "")
	t.Setenv("B2C_SHORTCODE", "600000")

	cfg := Load()

	assert.Equal(t, "https://api.safaricom.co.ke", cfg.Mpesa.BaseURL)
	assert.Equal(t, "600000", cfg.B2C.Shortcode)
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, GetIntEnv("SOME_INT", 7))

	t.Setenv("SOME_INT", "12")
	assert.Equal(t, 12, GetIntEnv("SOME_INT", 7))
}
