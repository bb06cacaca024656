package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	SourceTypeLogic = "logic"
	SourceTypeEdges = "edges"

	FormatText = "text"
	FormatJSON = "json"

	defaultReadSize         = 65536
	defaultStatusPort       = 8080
	defaultUpdateIntervalMs = 1000
)

type Config struct {
	SampleRate   int          `yaml:"sample_rate"`
	LogLevel     string       `yaml:"log_level"`
	Source       Source       `yaml:"source"`
	Outputs      Outputs      `yaml:"outputs"`
	StatusServer StatusServer `yaml:"status_server"`
	InfluxDB     struct {
		Host         string `yaml:"host"`
		Token        string `yaml:"token"`
		Organization string `yaml:"organization"`
		Bucket       string `yaml:"bucket"`
	} `yaml:"influxdb"`
}

type Source struct {
	Type     string `yaml:"type"`
	Path     string `yaml:"path"`
	Channel  uint   `yaml:"channel"`
	ReadSize int    `yaml:"read_size"`
}

type Outputs struct {
	Console struct {
		Enabled bool     `yaml:"enabled"`
		Format  string   `yaml:"format"`
		Rows    []string `yaml:"rows,flow"`
	} `yaml:"console"`
	MQTT MQTT `yaml:"mqtt"`
}

type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type StatusServer struct {
	Enabled          bool `yaml:"enabled"`
	Port             int  `yaml:"port"`
	UpdateIntervalMs int  `yaml:"update_interval_ms"`
	WebSocket        bool `yaml:"websocket"`
}

// UpdateInterval returns how often plots are redrawn.
func (s StatusServer) UpdateInterval() time.Duration {
	return time.Duration(s.UpdateIntervalMs) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.LogLevel = "info"
	c.Source.Type = SourceTypeLogic
	c.Source.ReadSize = defaultReadSize
	c.Outputs.Console.Enabled = true
	c.Outputs.Console.Format = FormatText
	c.Outputs.MQTT.Topic = "fdxb"
	c.StatusServer.Port = defaultStatusPort
	c.StatusServer.UpdateIntervalMs = defaultUpdateIntervalMs
	return c
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	contents, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("error reading config file: %w", err)
	}
	if err := Parse(contents, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Parse unmarshals YAML into c.
func Parse(contents []byte, c *Config) error {
	if err := yaml.Unmarshal(contents, c); err != nil {
		return fmt.Errorf("error unmarshaling yaml file: %w", err)
	}
	return nil
}

// Validate checks the settings a capture cannot run without. The sample rate
// is checked by the decoder since a source may supply it.
func (c Config) Validate() error {
	if c.SampleRate < 0 {
		return fmt.Errorf("sample rate must not be negative: %d", c.SampleRate)
	}
	switch c.Source.Type {
	case SourceTypeLogic:
		if c.Source.Channel > 7 {
			return fmt.Errorf("logic channel %d out of range 0-7", c.Source.Channel)
		}
	case SourceTypeEdges:
	default:
		return fmt.Errorf("unknown source type %q", c.Source.Type)
	}
	if c.Source.Path == "" {
		return fmt.Errorf("must specify a source path")
	}
	if c.Source.ReadSize <= 0 {
		return fmt.Errorf("read size must be positive: %d", c.Source.ReadSize)
	}
	switch c.Outputs.Console.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown console format %q", c.Outputs.Console.Format)
	}
	if c.StatusServer.Enabled {
		if c.StatusServer.Port <= 0 {
			return fmt.Errorf("status server port must be positive: %d", c.StatusServer.Port)
		}
		if c.StatusServer.UpdateIntervalMs <= 0 {
			return fmt.Errorf("status server update interval must be positive: %dms", c.StatusServer.UpdateIntervalMs)
		}
	}
	return nil
}
