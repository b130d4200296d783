package common

// Environment variable keys
const (
	EnvConfigFile       = "CONFIG_FILE"
	EnvListenPort       = "LISTEN_PORT"
	EnvMetricsEnabled   = "METRICS_ENABLED"
	EnvDataPath         = "DATA_PATH"
	EnvAPIKey           = "PD_API_KEY"
	EnvRateLimitRPS     = "RATE_LIMIT_RPS"
	EnvRateLimitBurst   = "RATE_LIMIT_BURST"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogPretty        = "LOG_PRETTY"
	EnvImportancePath   = "IMPORTANCE_PATH"
	EnvDashboardEnabled = "DASHBOARD_ENABLED"
	EnvRequestTimeout   = "REQUEST_TIMEOUT"
	EnvRecordPrefix     = "RECORD_PREFIX"
)

// Configuration defaults
const (
	DefaultListenPort       = 8080
	DefaultDataPath         = "data"
	DefaultRateLimitRPS     = 20.0
	DefaultRateLimitBurst   = 40
	DefaultLogLevel         = "info"
	DefaultImportancePath   = "data/importance.json"
	DefaultRecordPrefix     = "pred"
	DefaultMetricsEnabled   = true
	DefaultDashboardEnabled = true
)

// Storage layout
const (
	DatabaseFile      = "parkinson-insight.db"
	PredictionsBucket = "predictions"
)

// APIKeyHeader carries the shared API key on every authenticated request.
const APIKeyHeader = "X-API-Key"

// Validation constants
const (
	MinListenPort     = 1024
	MaxListenPort     = 65535
	MaxRateLimitRPS   = 10000.0
	MaxRateLimitBurst = 100000
	MaxRecordPrefix   = 32
)
