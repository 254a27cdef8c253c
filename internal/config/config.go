package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	CORSAllowedOrigins []string

	// DBURL empty means in-memory repositories seeded with demo data.
	DBURL          string
	DBMaxOpenConns int
	DBMaxIdleConns int

	LiveStateCacheTTL time.Duration
	DirectoryCacheTTL time.Duration

	IdentityBaseURL        string
	IdentityIntrospectPath string
	IdentityTimeout        time.Duration
	IdentityCacheTTL       time.Duration
	IdentityJWTSecret      string
	IdentityJWTIssuer      string
	IdentityCircuit        resilience.CircuitBreakerConfig

	AuditWorkers      int
	AuditWriteTimeout time.Duration
	AuditKafkaBrokers []string
	AuditKafkaTopic   string

	LivePushURL     string
	LivePushToken   string
	LivePushTimeout time.Duration
	LivePushWorkers int
	LivePushCircuit resilience.CircuitBreakerConfig

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// UsesPostgres reports whether a database is configured.
func (c Config) UsesPostgres() bool {
	return strings.TrimSpace(c.DBURL) != ""
}

// UsesJWT reports whether tokens are verified locally instead of introspected.
func (c Config) UsesJWT() bool {
	return c.IdentityJWTSecret != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	cfg := Config{
		AppEnv:                 appEnv,
		ServiceName:            getEnv("APP_SERVICE_NAME", "club-events-api"),
		ServiceVersion:         getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:               getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:               logLevel,
		DBURL:                  strings.TrimSpace(os.Getenv("DB_URL")),
		IdentityBaseURL:        getEnv("IDENTITY_BASE_URL", "http://localhost:8081"),
		IdentityIntrospectPath: getEnv("IDENTITY_INTROSPECT_PATH", "/v1/auth/introspect"),
		IdentityJWTSecret:      strings.TrimSpace(os.Getenv("IDENTITY_JWT_SECRET")),
		IdentityJWTIssuer:      strings.TrimSpace(os.Getenv("IDENTITY_JWT_ISSUER")),
		CORSAllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		AuditKafkaBrokers:      splitCSV(getEnv("AUDIT_KAFKA_BROKERS", "")),
		AuditKafkaTopic:        getEnv("AUDIT_KAFKA_TOPIC", "club.events.audit"),
		LivePushURL:            strings.TrimSpace(os.Getenv("LIVE_PUSH_URL")),
		LivePushToken:          strings.TrimSpace(os.Getenv("LIVE_PUSH_TOKEN")),
		PprofAddr:              strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		UptraceDSN:             strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
	}
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{"APP_READ_TIMEOUT", "10s", &cfg.ReadTimeout},
		{"APP_WRITE_TIMEOUT", "15s", &cfg.WriteTimeout},
		{"LIVE_STATE_CACHE_TTL", "30s", &cfg.LiveStateCacheTTL},
		{"DIRECTORY_CACHE_TTL", "1m", &cfg.DirectoryCacheTTL},
		{"IDENTITY_TIMEOUT", "3s", &cfg.IdentityTimeout},
		{"IDENTITY_CACHE_TTL", "30s", &cfg.IdentityCacheTTL},
		{"AUDIT_WRITE_TIMEOUT", "5s", &cfg.AuditWriteTimeout},
		{"LIVE_PUSH_TIMEOUT", "3s", &cfg.LivePushTimeout},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		value, err := getEnvAsDuration(item.key, item.fallback)
		if err != nil {
			return Config{}, err
		}
		*item.target = value
	}

	ints := []struct {
		key      string
		fallback int
		min      int
		target   *int
	}{
		{"DB_MAX_OPEN_CONNS", 20, 1, &cfg.DBMaxOpenConns},
		{"DB_MAX_IDLE_CONNS", 5, 0, &cfg.DBMaxIdleConns},
		{"AUDIT_WORKERS", 8, 1, &cfg.AuditWorkers},
		{"LIVE_PUSH_WORKERS", 4, 1, &cfg.LivePushWorkers},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value < item.min {
			return Config{}, fmt.Errorf("%s must be >= %d", item.key, item.min)
		}
		*item.target = value
	}

	bools := []struct {
		key      string
		fallback string
		target   *bool
	}{
		{"PPROF_ENABLED", "false", &cfg.PprofEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
	}
	for _, item := range bools {
		value, err := strconv.ParseBool(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.target = value
	}

	if cfg.IdentityCircuit, err = getCircuitConfig("IDENTITY"); err != nil {
		return Config{}, err
	}
	if cfg.LivePushCircuit, err = getCircuitConfig("LIVE_PUSH"); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PprofEnabled && c.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	if c.PyroscopeEnabled && c.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if c.PyroscopeEnabled && c.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(c.AuditKafkaBrokers) > 0 && strings.TrimSpace(c.AuditKafkaTopic) == "" {
		return fmt.Errorf("AUDIT_KAFKA_TOPIC is required when AUDIT_KAFKA_BROKERS is set")
	}
	if !c.UsesJWT() && strings.TrimSpace(c.IdentityBaseURL) == "" {
		return fmt.Errorf("IDENTITY_BASE_URL is required when IDENTITY_JWT_SECRET is empty")
	}
	if c.AppEnv == EnvProd && c.UsesJWT() && len(c.IdentityJWTSecret) < 32 {
		return fmt.Errorf("IDENTITY_JWT_SECRET must be at least 32 bytes in %s", EnvProd)
	}
	return nil
}

// getCircuitConfig reads <PREFIX>_CIRCUIT_* settings.
func getCircuitConfig(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabledKey := prefix + "_CIRCUIT_ENABLED"
	enabled, err := strconv.ParseBool(getEnv(enabledKey, strconv.FormatBool(defaults.Enabled)))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", enabledKey, err)
	}

	failureKey := prefix + "_CIRCUIT_FAILURE_COUNT"
	failures, err := getEnvAsInt(failureKey, defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", failureKey, err)
	}

	openTimeout, err := getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String())
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}

	halfOpenKey := prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	halfOpen, err := getEnvAsInt(halfOpenKey, defaults.HalfOpenMaxReq)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", halfOpenKey, err)
	}

	circuit := resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failures,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpen,
	}
	if err := circuit.Validate(); err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s circuit: %w", prefix, err)
	}
	return circuit, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

// getEnvAsDuration rejects non-positive durations.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
