// Package config holds the engine's tunable defaults: batch and
// partition sizing for materialization and the log level. Values can
// be loaded from a YAML file; zero fields fall back to the defaults.
package config

import (
	"os"

	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Config carries the engine defaults.
type Config struct {
	// BatchSize is the default local materialization batch size.
	BatchSize int `yaml:"batch_size"`
	// Parallelism bounds concurrent local batch fetches. 1 keeps
	// materialization strictly sequential.
	Parallelism int `yaml:"parallelism"`
	// NumBlocks is the default partition count for distributed
	// materialization.
	NumBlocks int `yaml:"num_blocks"`
	// BlocksPerWindow bounds how many partitions run concurrently.
	BlocksPerWindow int `yaml:"blocks_per_window"`
	// LogLevel is a logrus level name ("debug", "info", ...).
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		BatchSize:       1,
		Parallelism:     1,
		NumBlocks:       100,
		BlocksPerWindow: 10,
		LogLevel:        "info",
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	return c, nil
}

// Logger builds a logger honoring the configured level.
func (c Config) Logger() *logrus.Logger {
	l := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		l.SetLevel(level)
	}
	return l
}
