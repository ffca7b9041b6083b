package email_notifier_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "thermserver.alerts", cfg.In.Topic)
	assert.Equal(t, "email-notifier", cfg.In.GroupID)
	assert.Equal(t, 5*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, 2*time.Second, cfg.DB.QueryTimeout)

	cc := cfg.In.AsConsumerConfig()
	assert.Equal(t, cfg.In.Brokers, cc.Brokers)
	assert.Equal(t, cfg.In.Topic, cc.Topic)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SMTP_ADDR", "mail:2525")
	t.Setenv("KAFKA_IN_GROUP_ID", "mailer-2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mail:2525", cfg.SMTP.Addr)
	assert.Equal(t, "mailer-2", cfg.In.GroupID)
}
