package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
sample_rate: 1000000
log_level: debug
source:
  type: edges
  path: capture.txt
outputs:
  console:
    enabled: true
    format: json
    rows: [fields, values]
  mqtt:
    broker: tcp://localhost:1883
    topic: barn/reader1
status_server:
  enabled: true
  port: 9090
  update_interval_ms: 500
  websocket: true
influxdb:
  host: http://localhost:8086
  organization: farm
  bucket: tags
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fdxb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Equal(t, 1000000, c.SampleRate)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, SourceTypeEdges, c.Source.Type)
	require.Equal(t, "capture.txt", c.Source.Path)
	require.Equal(t, defaultReadSize, c.Source.ReadSize)
	require.Equal(t, FormatJSON, c.Outputs.Console.Format)
	require.Equal(t, []string{"fields", "values"}, c.Outputs.Console.Rows)
	require.Equal(t, "barn/reader1", c.Outputs.MQTT.Topic)
	require.Equal(t, 9090, c.StatusServer.Port)
	require.Equal(t, 500*time.Millisecond, c.StatusServer.UpdateInterval())
	require.True(t, c.StatusServer.WebSocket)
	require.Equal(t, "farm", c.InfluxDB.Organization)
}

func TestUpdateIntervalIsMilliseconds(t *testing.T) {
	tests := []struct {
		yaml string
		want time.Duration
	}{
		{"", time.Second},
		{"status_server: {update_interval_ms: 1}", time.Millisecond},
		{"status_server: {update_interval_ms: 250}", 250 * time.Millisecond},
		{"status_server: {update_interval_ms: 2000000}", 2000 * time.Second},
	}
	for _, tt := range tests {
		c := Default()
		require.NoError(t, Parse([]byte(tt.yaml), &c))
		require.Equal(t, tt.want, c.StatusServer.UpdateInterval(), tt.yaml)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseBadYAML(t *testing.T) {
	c := Default()
	require.Error(t, Parse([]byte("sample_rate: [1"), &c))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Source.Path = "capture.bin"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"negative rate", func(c *Config) { c.SampleRate = -1 }},
		{"unknown source", func(c *Config) { c.Source.Type = "wav" }},
		{"no path", func(c *Config) { c.Source.Path = "" }},
		{"channel range", func(c *Config) { c.Source.Channel = 8 }},
		{"read size", func(c *Config) { c.Source.ReadSize = 0 }},
		{"format", func(c *Config) { c.Outputs.Console.Format = "xml" }},
		{"port", func(c *Config) { c.StatusServer.Enabled = true; c.StatusServer.Port = 0 }},
		{"zero interval", func(c *Config) { c.StatusServer.Enabled = true; c.StatusServer.UpdateIntervalMs = 0 }},
		{"negative interval", func(c *Config) { c.StatusServer.Enabled = true; c.StatusServer.UpdateIntervalMs = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			require.Error(t, c.Validate())
		})
	}
}
