package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/club-events/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_URL", "")
	t.Setenv("IDENTITY_JWT_SECRET", "")
	t.Setenv("AUDIT_KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDev, cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesJWT())
	assert.Equal(t, 30*time.Second, cfg.LiveStateCacheTTL)
	assert.Equal(t, time.Minute, cfg.DirectoryCacheTTL)
	assert.Empty(t, cfg.AuditKafkaBrokers)
	assert.True(t, cfg.IdentityCircuit.Enabled)
	assert.Equal(t, 5, cfg.LivePushCircuit.FailureThreshold)
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_LogLevel(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)

	t.Setenv("APP_LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar,uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://token@api.uptrace.dev?grpc=4317", cfg.UptraceDSN)
}

func TestLoad_AuditKafkaBrokers(t *testing.T) {
	t.Setenv("AUDIT_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("AUDIT_KAFKA_TOPIC", "club.audit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.AuditKafkaBrokers)
	assert.Equal(t, "club.audit", cfg.AuditKafkaTopic)
}

func TestLoad_CircuitConfig(t *testing.T) {
	t.Setenv("LIVE_PUSH_CIRCUIT_ENABLED", "false")
	t.Setenv("LIVE_PUSH_CIRCUIT_FAILURE_COUNT", "3")
	t.Setenv("LIVE_PUSH_CIRCUIT_OPEN_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.LivePushCircuit.Enabled)
	assert.Equal(t, 3, cfg.LivePushCircuit.FailureThreshold)
	assert.Equal(t, 45*time.Second, cfg.LivePushCircuit.OpenTimeout)

	t.Setenv("IDENTITY_CIRCUIT_HALF_OPEN_MAX_REQ", "0")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY circuit")
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("LIVE_STATE_CACHE_TTL", "0s")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProdRequiresStrongJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("IDENTITY_JWT_SECRET", "short")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("IDENTITY_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UsesJWT())
}

func TestLoad_PyroscopeRequiresServer(t *testing.T) {
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")
	_, err := Load()
	assert.Error(t, err)
}
