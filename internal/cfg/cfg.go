package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"parkinson-insight/internal/common"
)

type Settings struct {
	ListenPort       int
	MetricsEnabled   bool
	DataPath         string
	APIKey           string
	RateLimitRPS     float64
	RateLimitBurst   int
	LogLevel         string
	LogPretty        bool
	ImportancePath   string
	DashboardEnabled bool
	RequestTimeout   time.Duration
	RecordPrefix     string
}

type ConfigFile struct {
	Server struct {
		ListenPort     int     `yaml:"listenPort"`
		APIKey         string  `yaml:"apiKey"`
		RateLimitRPS   float64 `yaml:"rateLimitRPS"`
		RateLimitBurst int     `yaml:"rateLimitBurst"`
		RequestTimeout string  `yaml:"requestTimeout"`
	} `yaml:"server"`

	Storage struct {
		DataPath     string `yaml:"dataPath"`
		RecordPrefix string `yaml:"recordPrefix"`
	} `yaml:"storage"`

	Insights struct {
		ImportancePath   string `yaml:"importancePath"`
		DashboardEnabled *bool  `yaml:"dashboardEnabled"`
		MetricsEnabled   *bool  `yaml:"metricsEnabled"`
	} `yaml:"insights"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// Load reads settings from CONFIG_FILE when set, otherwise from the
// environment. A .env file in the working directory is applied first and
// never overrides variables that are already set.
func Load() (Settings, error) {
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Server.RequestTimeout)
	if err != nil {
		timeout = 10 * time.Second
	}

	settings := Settings{
		ListenPort:       getIntFromEnvOrConfig(common.EnvListenPort, config.Server.ListenPort, common.DefaultListenPort),
		MetricsEnabled:   getBoolOrDefault(common.EnvMetricsEnabled, boolOr(config.Insights.MetricsEnabled, common.DefaultMetricsEnabled)),
		DataPath:         getEnvOrDefault(common.EnvDataPath, stringOr(config.Storage.DataPath, common.DefaultDataPath)),
		APIKey:           getEnvOrDefault(common.EnvAPIKey, config.Server.APIKey),
		RateLimitRPS:     getFloatFromEnvOrConfig(common.EnvRateLimitRPS, config.Server.RateLimitRPS, common.DefaultRateLimitRPS),
		RateLimitBurst:   getIntFromEnvOrConfig(common.EnvRateLimitBurst, config.Server.RateLimitBurst, common.DefaultRateLimitBurst),
		LogLevel:         getEnvOrDefault(common.EnvLogLevel, stringOr(config.Logging.Level, common.DefaultLogLevel)),
		LogPretty:        getBoolOrDefault(common.EnvLogPretty, config.Logging.Pretty),
		ImportancePath:   getEnvOrDefault(common.EnvImportancePath, stringOr(config.Insights.ImportancePath, common.DefaultImportancePath)),
		DashboardEnabled: getBoolOrDefault(common.EnvDashboardEnabled, boolOr(config.Insights.DashboardEnabled, common.DefaultDashboardEnabled)),
		RequestTimeout:   getDurationOrDefault(common.EnvRequestTimeout, timeout),
		RecordPrefix:     getEnvOrDefault(common.EnvRecordPrefix, stringOr(config.Storage.RecordPrefix, common.DefaultRecordPrefix)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenPort:       getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		MetricsEnabled:   getBoolOrDefault(common.EnvMetricsEnabled, common.DefaultMetricsEnabled),
		DataPath:         getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
		APIKey:           os.Getenv(common.EnvAPIKey), // optional, auth is off when empty
		RateLimitRPS:     getFloatOrDefault(common.EnvRateLimitRPS, common.DefaultRateLimitRPS),
		RateLimitBurst:   getIntOrDefault(common.EnvRateLimitBurst, common.DefaultRateLimitBurst),
		LogLevel:         getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogPretty:        getBoolOrDefault(common.EnvLogPretty, false),
		ImportancePath:   getEnvOrDefault(common.EnvImportancePath, common.DefaultImportancePath),
		DashboardEnabled: getBoolOrDefault(common.EnvDashboardEnabled, common.DefaultDashboardEnabled),
		RequestTimeout:   getDurationOrDefault(common.EnvRequestTimeout, 10*time.Second),
		RecordPrefix:     getEnvOrDefault(common.EnvRecordPrefix, common.DefaultRecordPrefix),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// Level returns the parsed log level. validateSettings guarantees it parses.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// AuthEnabled reports whether requests must carry the API key.
func (s Settings) AuthEnabled() bool {
	return s.APIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getIntOrDefault(key, defaultValue)
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if configValue != 0 {
		defaultValue = configValue
	}
	return getFloatOrDefault(key, defaultValue)
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

// validateSettings performs range checks on every configuration value
func validateSettings(settings *Settings) error {
	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d",
			common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}

	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}

	if settings.RateLimitRPS <= 0 || settings.RateLimitRPS > common.MaxRateLimitRPS {
		return fmt.Errorf("rate limit must be between 0 and %.0f requests per second, got %f",
			common.MaxRateLimitRPS, settings.RateLimitRPS)
	}
	if settings.RateLimitBurst < 1 || settings.RateLimitBurst > common.MaxRateLimitBurst {
		return fmt.Errorf("rate limit burst must be between 1 and %d, got %d",
			common.MaxRateLimitBurst, settings.RateLimitBurst)
	}

	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}

	if settings.RequestTimeout < 100*time.Millisecond || settings.RequestTimeout > 5*time.Minute {
		return fmt.Errorf("request timeout must be between 100ms and 5m, got %v", settings.RequestTimeout)
	}

	if settings.RecordPrefix == "" || len(settings.RecordPrefix) > common.MaxRecordPrefix {
		return fmt.Errorf("record prefix must be 1 to %d characters, got %q", common.MaxRecordPrefix, settings.RecordPrefix)
	}
	if strings.ContainsAny(settings.RecordPrefix, "/_") {
		return fmt.Errorf("record prefix must not contain '/' or '_', got %q", settings.RecordPrefix)
	}

	return nil
}
