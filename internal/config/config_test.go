package config

import (
	"testing"
	"time"
)

func TestLoad_StorageOptional(t *testing.T) {
	tests := []struct {
		name         string
		endpoint     *string
		wantEndpoint string
	}{
		{
			name:         "unset endpoint disables storage",
			endpoint:     nil,
			wantEndpoint: "",
		},
		{
			name:         "explicitly empty endpoint disables storage",
			endpoint:     strPtr(""),
			wantEndpoint: "",
		},
		{
			name:         "configured endpoint is kept",
			endpoint:     strPtr("minio:9000"),
			wantEndpoint: "minio:9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.endpoint != nil {
				t.Setenv("STORAGE_ENDPOINT", *tt.endpoint)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Storage.Endpoint != tt.wantEndpoint {
				t.Errorf("Storage.Endpoint = %q, want %q", cfg.Storage.Endpoint, tt.wantEndpoint)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestLoad_ShutdownTimeout(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("default ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}

	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "5s")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_Validate(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := Load(); err == nil {
		t.Error("Load() with an unsupported driver should fail")
	}
}
