package cfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenPort != 8080 {
					t.Errorf("expected default ListenPort 8080, got %d", settings.ListenPort)
				}
				if settings.DataPath != "data" {
					t.Errorf("expected default DataPath 'data', got %s", settings.DataPath)
				}
				if settings.AuthEnabled() {
					t.Error("expected auth to be disabled without an API key")
				}
				if settings.RequestTimeout != 10*time.Second {
					t.Errorf("expected default RequestTimeout 10s, got %v", settings.RequestTimeout)
				}
				if !settings.MetricsEnabled || !settings.DashboardEnabled {
					t.Error("expected metrics and dashboard to be enabled by default")
				}
				if settings.RecordPrefix != "pred" {
					t.Errorf("expected default RecordPrefix 'pred', got %s", settings.RecordPrefix)
				}
			},
		},
		{
			name: "custom settings",
			envVars: map[string]string{
				"LISTEN_PORT":       "9090",
				"PD_API_KEY":        "secret",
				"RATE_LIMIT_RPS":    "5",
				"RATE_LIMIT_BURST":  "10",
				"LOG_LEVEL":         "debug",
				"LOG_PRETTY":        "true",
				"REQUEST_TIMEOUT":   "3s",
				"DASHBOARD_ENABLED": "false",
				"RECORD_PREFIX":     "assess",
			},
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenPort != 9090 {
					t.Errorf("expected ListenPort 9090, got %d", settings.ListenPort)
				}
				if !settings.AuthEnabled() || settings.APIKey != "secret" {
					t.Errorf("expected API key 'secret', got %q", settings.APIKey)
				}
				if settings.RateLimitRPS != 5 || settings.RateLimitBurst != 10 {
					t.Errorf("unexpected rate limit %f/%d", settings.RateLimitRPS, settings.RateLimitBurst)
				}
				if settings.Level() != zerolog.DebugLevel {
					t.Errorf("expected debug level, got %v", settings.Level())
				}
				if !settings.LogPretty {
					t.Error("expected LogPretty")
				}
				if settings.RequestTimeout != 3*time.Second {
					t.Errorf("expected RequestTimeout 3s, got %v", settings.RequestTimeout)
				}
				if settings.DashboardEnabled {
					t.Error("expected dashboard to be disabled")
				}
				if settings.RecordPrefix != "assess" {
					t.Errorf("expected RecordPrefix 'assess', got %s", settings.RecordPrefix)
				}
			},
		},
		{
			name:    "port out of range",
			envVars: map[string]string{"LISTEN_PORT": "80"},
			wantErr: true,
		},
		{
			name:    "zero rate limit",
			envVars: map[string]string{"RATE_LIMIT_RPS": "0"},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			envVars: map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "timeout too short",
			envVars: map[string]string{"REQUEST_TIMEOUT": "1ms"},
			wantErr: true,
		},
		{
			name:    "prefix with separator",
			envVars: map[string]string{"RECORD_PREFIX": "a_b"},
			wantErr: true,
		},
		{
			name:    "unparsable values fall back to defaults",
			envVars: map[string]string{"LISTEN_PORT": "abc", "LOG_PRETTY": "maybe"},
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenPort != 8080 {
					t.Errorf("expected fallback ListenPort 8080, got %d", settings.ListenPort)
				}
				if settings.LogPretty {
					t.Error("expected LogPretty to fall back to false")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  listenPort: 7070
  apiKey: yaml-key
  rateLimitRPS: 2.5
  rateLimitBurst: 5
  requestTimeout: 2s
storage:
  dataPath: /var/lib/pd
  recordPrefix: rec
insights:
  importancePath: /var/lib/pd/importance.json
  dashboardEnabled: false
logging:
  level: warn
  pretty: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("PD_API_KEY", "env-key")

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.ListenPort != 7070 {
		t.Errorf("expected ListenPort 7070, got %d", settings.ListenPort)
	}
	if settings.APIKey != "env-key" {
		t.Errorf("expected environment to override API key, got %q", settings.APIKey)
	}
	if settings.RateLimitRPS != 2.5 || settings.RateLimitBurst != 5 {
		t.Errorf("unexpected rate limit %f/%d", settings.RateLimitRPS, settings.RateLimitBurst)
	}
	if settings.RequestTimeout != 2*time.Second {
		t.Errorf("expected RequestTimeout 2s, got %v", settings.RequestTimeout)
	}
	if settings.DataPath != "/var/lib/pd" || settings.RecordPrefix != "rec" {
		t.Errorf("unexpected storage settings %s %s", settings.DataPath, settings.RecordPrefix)
	}
	if settings.DashboardEnabled {
		t.Error("expected dashboard to be disabled by YAML")
	}
	if !settings.MetricsEnabled {
		t.Error("expected metrics to keep its default when YAML omits it")
	}
	if settings.Level() != zerolog.WarnLevel || !settings.LogPretty {
		t.Errorf("unexpected logging settings %s %v", settings.LogLevel, settings.LogPretty)
	}
}

func TestLoadFromYAML_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "parse") {
			t.Fatalf("expected parse error, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "range.yaml")
		if err := os.WriteFile(path, []byte("server:\n  listenPort: 70000\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CONFIG_FILE", path)
		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "validation") {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "LISTEN_PORT", "METRICS_ENABLED", "DATA_PATH", "PD_API_KEY",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "LOG_PRETTY",
		"IMPORTANCE_PATH", "DASHBOARD_ENABLED", "REQUEST_TIMEOUT", "RECORD_PREFIX",
	} {
		t.Setenv(key, "")
	}
}
