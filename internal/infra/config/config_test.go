package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "memory", cfg.StorageMode)
	require.Equal(t, "memory", cfg.SessionsMode)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, DefaultNightlyRateCents, cfg.DefaultRateCents)
	require.Equal(t, "EUR", cfg.Currency)
}

func TestLoadMongoRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "mongo", cfg.StorageMode)
}

func TestLoadRejectsUnknownModes(t *testing.T) {
	t.Setenv("STORAGE_MODE", "postgres")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("DEFAULT_NIGHTLY_RATE_CENTS", "9900")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BILLING_WINDOW", "1h")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 45*time.Minute, cfg.SessionTTL)
	require.Equal(t, int64(9900), cfg.DefaultRateCents)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, time.Hour, cfg.BillingWindow)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("DEFAULT_NIGHTLY_RATE_CENTS", "-5")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("DEFAULT_NIGHTLY_RATE_CENTS", "100")
	t.Setenv("CURRENCY", "EURO")
	_, err = Load()
	require.Error(t, err)
}
