package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/visa-booking-website/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		check   func(*testing.T, *config.Config)
	}{
		{
			name:    "missing secret fails",
			env:     map[string]string{},
			wantErr: "JWT_SECRET environment variable is required",
		},
		{
			name:    "short secret fails",
			env:     map[string]string{"JWT_SECRET": "short"},
			wantErr: "JWT_SECRET must be at least",
		},
		{
			name: "defaults with secret",
			env:  map[string]string{"JWT_SECRET": validSecret},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "8080", cfg.Port)
				assert.Equal(t, 10, cfg.BcryptCost)
				assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
				assert.Equal(t, config.StoreDriverPostgres, cfg.StoreDriver)
				assert.Equal(t, config.NotifierOutbox, cfg.Notifier)
				assert.False(t, cfg.IsProduction())
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"JWT_SECRET":           validSecret,
				"PORT":                 "9999",
				"STORE_DRIVER":         "memory",
				"JWT_EXPIRATION_HOURS": "2",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "9999", cfg.Port)
				assert.Equal(t, config.StoreDriverMemory, cfg.StoreDriver)
				assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
			},
		},
		{
			name:    "malformed integer fails",
			env:     map[string]string{"JWT_SECRET": validSecret, "JWT_EXPIRATION_HOURS": "soon"},
			wantErr: "JWT_EXPIRATION_HOURS must be an integer",
		},
		{
			name:    "bcrypt cost out of range fails",
			env:     map[string]string{"JWT_SECRET": validSecret, "BCRYPT_COST": "40"},
			wantErr: "BCRYPT_COST must be between",
		},
		{
			name:    "memory store refused in production",
			env:     map[string]string{"JWT_SECRET": validSecret, "STORE_DRIVER": "memory", "ENVIRONMENT": "production"},
			wantErr: "not allowed in production",
		},
		{
			name:    "unknown notifier fails",
			env:     map[string]string{"JWT_SECRET": validSecret, "NOTIFIER": "smtp"},
			wantErr: "unknown NOTIFIER",
		},
		{
			name: "log notifier and timeout overrides",
			env: map[string]string{
				"JWT_SECRET":              validSecret,
				"NOTIFIER":                "log",
				"REQUEST_TIMEOUT_SECONDS": "3",
				"NOTIFY_TIMEOUT_SECONDS":  "4",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.NotifierLog, cfg.Notifier)
				assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
				assert.Equal(t, 4*time.Second, cfg.NotifyTimeout)
			},
		},
		{
			name:    "unknown store driver fails",
			env:     map[string]string{"JWT_SECRET": validSecret, "STORE_DRIVER": "mongo"},
			wantErr: "unknown STORE_DRIVER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("port: \"7070\"\njwtSecret: " + validSecret + "\nnotifyTimeout: 3s\nstoreDriver: memory\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "6060")

	cfg, err := config.Load()
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, "6060", cfg.Port)
	assert.Equal(t, validSecret, cfg.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, config.StoreDriverMemory, cfg.StoreDriver)
}

func TestLoad_YAMLSubSecondTimeoutsSurvive(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("jwtSecret: " + validSecret + "\nrequestTimeout: 500ms\nnotifyTimeout: 1500ms\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.NotifyTimeout)
}

func TestLoad_MissingYAMLFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("JWT_SECRET", validSecret)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
}

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG_FILE", "PORT", "ENVIRONMENT", "REQUEST_TIMEOUT_SECONDS", "CORS_ALLOWED_ORIGIN",
		"STORE_DRIVER", "DATABASE_URL", "JWT_SECRET", "JWT_EXPIRATION_HOURS", "JWT_ISSUER",
		"BCRYPT_COST", "LOG_LEVEL", "LOG_FORMAT", "NOTIFIER", "NOTIFY_TIMEOUT_SECONDS",
	}
	for _, k := range keys {
		// Setenv registers restoration; Unsetenv then removes the value for this test.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}
