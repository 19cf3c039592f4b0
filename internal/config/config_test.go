package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, PersistMongoDB, cfg.Backend())
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "ecommerce", cfg.MongoDatabase)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_FromProcessEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PERSIST_MODE", "filesystem")
	t.Setenv("DATA_DIR", "/var/lib/storefront")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, PersistFilesystem, cfg.Backend())
	assert.Equal(t, "/var/lib/storefront", cfg.DataDir)
}

func TestBackend(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"filesystem", PersistFilesystem},
		{" Redis ", PersistRedis},
		{"POSTGRES", PersistPostgres},
		{"mongodb", PersistMongoDB},
		{"memory", PersistMongoDB},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg, err := LoadFrom(map[string]string{"PERSIST_MODE": tt.mode})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Backend())
		})
	}
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"HTTP_PORT": "70000"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"OTEL_SAMPLE_RATE": "2.0"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_InvalidPostgresPort(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"PERSIST_MODE": "postgres", "POSTGRES_PORT": "0"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid postgres port")
}

func TestLoad_PostgresPortIgnoredForOtherBackends(t *testing.T) {
	_, err := LoadFrom(map[string]string{"PERSIST_MODE": "redis", "POSTGRES_PORT": "0"})

	assert.NoError(t, err)
}

func TestLoad_ListSettings(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"KAFKA_ENABLED":        "true",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"CORS_ALLOWED_ORIGINS": "http://localhost:3000,https://shop.example.com",
	})

	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_MalformedValue(t *testing.T) {
	_, err := LoadFrom(map[string]string{"REDIS_DB": "zero"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load storefront config")
}
