package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 9090

[database]
host = "localhost"
user = "venue"
password = "from-file"
dbname = "venues"

[booking]
cancellation_cutoff_minutes = 1440

[broadcast]
enabled = true
url = "nats://localhost:4222"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8, cfg.Booking.TimezoneOffsetHours)
	assert.Equal(t, 1440, cfg.Booking.CancellationCutoffMinutes)
	assert.Equal(t, "venue.bookings.broadcast", cfg.Broadcast.Subject)
	assert.Equal(t,
		"host=localhost port=5432 user=venue password=from-env dbname=venues sslmode=disable",
		cfg.Database.DSN())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing database",
			content: "[server]\nhttp_port = 8080\n",
		},
		{
			name:    "negative cutoff",
			content: "[database]\nhost = \"db\"\ndbname = \"v\"\n[booking]\ncancellation_cutoff_minutes = -1\n",
		},
		{
			name:    "mail without key",
			content: "[database]\nhost = \"db\"\ndbname = \"v\"\n[mail]\nenabled = true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAILERSEND_API_KEY", "")
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
