package refresher

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	location := path.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(location, []byte(`
runner:
  workers: 3
  refreshConcurrency: 12
remote:
  baseURL: https://updates.example.com
  timeoutMs: 5000
`), 0o644)
	assert.NoError(t, err)

	config, err := LoadConfig(context.Background(), location)
	assert.NoError(t, err)
	assert.Equal(t, 3, config.Runner.Workers)
	assert.Equal(t, 12, config.Runner.RefreshConcurrency)
	assert.Equal(t, "https://updates.example.com", config.Remote.BaseURL)
	assert.Equal(t, 5000, config.Remote.TimeoutMs)
}

func TestLoadConfig_Invalid(t *testing.T) {
	location := path.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(location, []byte("runner:\n  workers: 0\n"), 0o644)
	assert.NoError(t, err)

	_, err = LoadConfig(context.Background(), location)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	config := DefaultConfig()
	config.Runner.RefreshConcurrency = -1
	assert.Error(t, config.Validate())
}
