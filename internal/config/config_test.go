package config

import (
	"testing"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FLOW_API_URL", "https://sandbox.flow.cl/api")
	t.Setenv("FLOW_API_KEY", "api-key")
	t.Setenv("FLOW_SECRET_KEY", "secret")
	t.Setenv("FLOW_URL_CONFIRMATION", "https://example.com/api/flow/confirm")
	t.Setenv("FLOW_URL_RETURN", "https://example.com/api/flow/return")
	t.Setenv("RESEND_API_KEY", "re_key")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "CLP", cfg.Flow.Currency)
	assert.Equal(t, 9, cfg.Flow.PaymentMethod)
	assert.Equal(t, "MAKA", cfg.Flow.OrderPrefix)
	assert.Equal(t, 10*time.Second, cfg.Flow.Timeout)
	assert.Equal(t, 15*time.Second, cfg.CallbackTimeout)
	assert.Equal(t, "https://api.resend.com", cfg.Email.APIURL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Calendar.Enabled())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("FLOW_SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "FLOW_SECRET_KEY")
}

func TestLoadConfig_InvalidURL(t *testing.T) {
	setRequired(t)
	t.Setenv("FLOW_URL_RETURN", "not a url")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestKafkaConfig_BrokerList(t *testing.T) {
	c := KafkaConfig{Brokers: "a:9092, b:9092,,"}
	assert.True(t, c.Enabled())
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.BrokerList())
}
