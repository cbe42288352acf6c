package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		env      map[string]string
		expected func(t *testing.T, cfg *Config)
	}{
		{
			name: "given empty file should use defaults",
			yaml: "",
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:8000", cfg.Application.BaseURL)
				assert.Equal(t, "catalog", cfg.Application.Variant)
				assert.Equal(t, "@gmail.com", cfg.Application.EmailDomain)
				assert.Equal(t, 1, cfg.Application.FallbackUserID)
				assert.Equal(t, "file", cfg.Session.Driver)
				assert.Equal(t, uint16(6379), cfg.Cache.Port)
				assert.False(t, cfg.Otel.Enabled)
			},
		},
		{
			name: "given file values should override defaults",
			yaml: "application:\n  variant: legacy\n  timeout: 3s\nsession:\n  driver: memory\n",
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "legacy", cfg.Application.Variant)
				assert.Equal(t, 3*time.Second, cfg.Application.Timeout)
				assert.Equal(t, "memory", cfg.Session.Driver)
			},
		},
		{
			name: "given env should override file",
			yaml: "application:\n  base_url: http://file:8000\n",
			env:  map[string]string{"KICKSHOPPING_APPLICATION_BASE_URL": "http://env:9000"},
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://env:9000", cfg.Application.BaseURL)
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for key, value := range test.env {
				t.Setenv(key, value)
			}
			path := filepath.Join(t.TempDir(), "kickshopping.yaml")
			require.NoError(t, os.WriteFile(path, []byte(test.yaml), 0o600))

			cfg, err := Load(context.Background(), "kickshopping", path)

			require.NoError(t, err)
			test.expected(t, cfg)
		})
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kickshopping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("application: [\n"), 0o600))

	_, err := Load(context.Background(), "kickshopping", path)

	assert.Error(t, err)
}
