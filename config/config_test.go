package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 1, c.BatchSize)
	assert.Equal(t, 1, c.Parallelism)
	assert.Equal(t, 100, c.NumBlocks)
	assert.Equal(t, 10, c.BlocksPerWindow)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "meerkat.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("overrides defaults from yaml", func(t *testing.T) {
		c, err := Load(write(t, "batch_size: 16\nnum_blocks: 4\nlog_level: debug\n"))
		require.NoError(t, err)
		assert.Equal(t, 16, c.BatchSize)
		assert.Equal(t, 4, c.NumBlocks)
		assert.Equal(t, "debug", c.LogLevel)
		// Untouched fields keep their defaults.
		assert.Equal(t, 10, c.BlocksPerWindow)
	})

	t.Run("clamps non-positive sizes", func(t *testing.T) {
		c, err := Load(write(t, "batch_size: 0\nparallelism: -2\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, c.BatchSize)
		assert.Equal(t, 1, c.Parallelism)
	})

	t.Run("missing file returns the defaults and an error", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Equal(t, Default(), c)
	})
}

func TestLogger(t *testing.T) {
	t.Run("honors the configured level", func(t *testing.T) {
		c := Default()
		c.LogLevel = "debug"
		assert.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())
	})

	t.Run("unknown levels keep the logrus default", func(t *testing.T) {
		c := Default()
		c.LogLevel = "nope"
		assert.Equal(t, logrus.InfoLevel, c.Logger().GetLevel())
	})
}
