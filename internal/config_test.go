package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name: "missing file uses defaults",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Backend.BaseURL != DefaultBackendURL || cfg.Timing.SettleDelay != DefaultSettleDelay || cfg.Activity.Capacity != DefaultActivityCap {
					t.Errorf("defaults = %+v", cfg)
				}
			},
		},
		{
			name: "file overrides",
			content: `backend:
  base_url: http://tutor.example:8080
  timeout: 5s
timing:
  link_delay: 250ms
render:
  sanitize: true
storage:
  path: /tmp/assistant.db
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Backend.BaseURL != "http://tutor.example:8080" || cfg.Backend.Timeout != 5*time.Second {
					t.Errorf("backend = %+v", cfg.Backend)
				}
				if cfg.Timing.LinkDelay != 250*time.Millisecond || cfg.Timing.SettleDelay != DefaultSettleDelay {
					t.Errorf("timing = %+v", cfg.Timing)
				}
				if !cfg.Render.Sanitize || cfg.Storage.Path != "/tmp/assistant.db" {
					t.Errorf("render/storage = %+v/%+v", cfg.Render, cfg.Storage)
				}
			},
		},
		{
			name: "invalid values normalised",
			content: `backend:
  base_url: ""
  timeout: -1s
timing:
  settle_delay: -5s
activity:
  capacity: 0
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Backend.BaseURL != DefaultBackendURL || cfg.Backend.Timeout != DefaultTimeout {
					t.Errorf("backend = %+v", cfg.Backend)
				}
				if cfg.Timing.SettleDelay != DefaultSettleDelay || cfg.Activity.Capacity != DefaultActivityCap {
					t.Errorf("timing/activity = %+v/%+v", cfg.Timing, cfg.Activity)
				}
			},
		},
		{
			name:    "environment wins",
			content: "backend:\n  base_url: http://file\n",
			env:     map[string]string{"TUTOR_BACKEND_URL": "http://env", "TUTOR_STORAGE_PATH": "/env.db"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Backend.BaseURL != "http://env" || cfg.Storage.Path != "/env.db" {
					t.Errorf("config = %+v", cfg)
				}
			},
		},
		{
			name:    "malformed yaml",
			content: "backend: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TUTOR_BACKEND_URL", "")
			t.Setenv("TUTOR_STORAGE_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := LoadConfig(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
