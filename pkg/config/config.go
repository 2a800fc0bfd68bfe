// Package config defines the order service configuration and its loaders.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps all validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration wraps time.Duration so YAML and JSON configs can use strings like
// "3s" or "250ms".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML accepts either a duration string or a bare number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return d.decode(raw)
}

// UnmarshalJSON accepts either a duration string or a bare number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		parsed, err := time.ParseDuration(strings.Trim(s, `"`))
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if _, err := fmt.Sscanf(s, "%g", &secs); err != nil {
		return fmt.Errorf("invalid duration: %s", s)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) decode(raw any) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	default:
		return fmt.Errorf("invalid duration value: %v", raw)
	}
	return nil
}

// Config is the root configuration for the order service.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string   `json:"host" yaml:"host"`
	Port         int      `json:"port" yaml:"port"`
	ReadTimeout  Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout"`
	MetricsPath  string   `json:"metrics_path" yaml:"metrics_path"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SimulationConfig configures the simulated order processor.
type SimulationConfig struct {
	// MinDelay and MaxDelay bound the simulated processing time.
	MinDelay Duration `json:"min_delay" yaml:"min_delay"`
	MaxDelay Duration `json:"max_delay" yaml:"max_delay"`

	// FailureRate is the probability (0..1) that processing an order fails.
	FailureRate float64 `json:"failure_rate" yaml:"failure_rate"`
}

// MetricsConfig configures the metrics registry.
type MetricsConfig struct {
	// Buckets overrides the request-duration histogram ladder.
	// Empty selects the built-in default ladder.
	Buckets []float64 `json:"buckets" yaml:"buckets"`

	// DefaultLabels are merged into every label combination at first
	// observation (e.g. service or environment names).
	DefaultLabels map[string]string `json:"default_labels" yaml:"default_labels"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns the configuration used when no file or flags override it.
// The write timeout leaves headroom over the slowest simulated order.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			MetricsPath:  "/metrics",
		},
		Simulation: SimulationConfig{
			MinDelay:    Duration(3 * time.Second),
			MaxDelay:    Duration(6 * time.Second),
			FailureRate: 0.1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration, wrapping each failure in
// ErrInvalidConfig. Validation failures are fatal at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("%w: metrics path %q must start with /", ErrInvalidConfig, c.Server.MetricsPath)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("%w: negative server timeout", ErrInvalidConfig)
	}

	if c.Simulation.MinDelay < 0 {
		return fmt.Errorf("%w: negative min_delay", ErrInvalidConfig)
	}
	if c.Simulation.MaxDelay < c.Simulation.MinDelay {
		return fmt.Errorf("%w: max_delay %s below min_delay %s", ErrInvalidConfig,
			c.Simulation.MaxDelay.Std(), c.Simulation.MinDelay.Std())
	}
	if c.Simulation.FailureRate < 0 || c.Simulation.FailureRate > 1 {
		return fmt.Errorf("%w: failure_rate %g outside [0,1]", ErrInvalidConfig, c.Simulation.FailureRate)
	}

	for i, b := range c.Metrics.Buckets {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: bucket %v is not finite", ErrInvalidConfig, b)
		}
		if i > 0 && b <= c.Metrics.Buckets[i-1] {
			return fmt.Errorf("%w: buckets must be strictly ascending", ErrInvalidConfig)
		}
	}

	return nil
}
