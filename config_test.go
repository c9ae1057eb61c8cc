package station

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "station.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
port = "/dev/ttyUSB1"
baud_rate = 9600
address = 0
timeout = "500ms"
poll_interval = "10s"
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:         "/dev/ttyUSB1",
		BaudRate:     9600,
		Address:      0,
		Timeout:      500 * time.Millisecond,
		PollInterval: 10 * time.Second,
	}, cfg)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `port = "/dev/ttyUSB1"`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Port)
	assert.Equal(t, DefaultBaudRate, cfg.BaudRate)
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad timeout", `timeout = "soon"`},
		{"bad poll interval", `poll_interval = "3 fortnights"`},
		{"bad baud rate", `baud_rate = -1`},
		{"bad syntax", `port = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))

			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
