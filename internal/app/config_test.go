package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Second, cfg.ReservationTTL)
	assert.Equal(t, 3, cfg.RoomNameMinLength)
	assert.Equal(t, 2, cfg.UsernameMinLength)
	assert.Equal(t, 1024, cfg.MailboxSize)
	assert.Empty(t, cfg.PGURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("RESERVATION_TTL", "45s")
	t.Setenv("CORS_ALLOW", "http://a.example, ,http://b.example")
	t.Setenv("MAILBOX_SIZE", "16")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.ReservationTTL)
	assert.Equal(t, 16, cfg.MailboxSize)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RESERVATION_TTL", "0s"},
		{"ROOM_NAME_MIN_LENGTH", "0"},
		{"MAILBOX_SIZE", "0"},
		{"MAILBOX_SIZE", "many"},
		{"RESERVE_RATE_WINDOW", "0s"},
		{"JOURNAL_SIZE", "-1"},
		{"JOURNAL_SIZE", "0"},
		{"PG_MAX_CONN", "0"},
		{"REDIS_DB", "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("WARN").String())
	assert.Equal(t, "INFO", parseLevel("").String())
}
