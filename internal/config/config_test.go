package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, "/dev/ttyUSB0", c.ComPort())
	assert.Equal(t, 38400, c.BaudRate())
	assert.False(t, c.SimulationMode())
	assert.True(t, c.AmbientEnabled())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"com_port: /dev/ttyACM0\nbaud_rate: \"9600\"\nsimulation_mode: \"true\"\n",
	), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", c.ComPort())
	assert.Equal(t, 9600, c.BaudRate())
	assert.True(t, c.SimulationMode())
	// Untouched keys keep their default.
	assert.Equal(t, 1000, c.DefaultFadeTimeMs())
}

func TestBadIntFallsBack(t *testing.T) {
	c := New()
	c.Set(KeyBaudRate, "not-a-number")
	assert.Equal(t, 38400, c.BaudRate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}
