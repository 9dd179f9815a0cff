package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8000", cfg.Port)
	assert.Equal(t, "dev-insecure-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTTL)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPrefixedSections(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("MIDTRANS_SERVER_KEY", "SB-Mid-server-abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Contains(t, cfg.DB.DSN(), "@tcp(db.internal:3306)/shop?")
	assert.True(t, cfg.Midtrans.Configured())
}

func TestMidtransConfigured(t *testing.T) {
	for key, want := range map[string]bool{
		"":                  false,
		"   ":               false,
		"your-server-key":   false,
		"YOUR_OWN_KEY":      false,
		"SB-Mid-server-xyz": true,
	} {
		assert.Equal(t, want, MidtransConfig{ServerKey: key}.Configured(), key)
	}
}
