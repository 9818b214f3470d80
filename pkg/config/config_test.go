package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, BackendFile, cfg.Storage.DedupBackend)
	assert.Equal(t, BackendFile, cfg.Storage.BlobBackend)
	assert.Equal(t, BackendNone, cfg.Storage.Publisher)
	assert.Equal(t, "1", cfg.DIAN.Environment)
	assert.Empty(t, cfg.DIAN.TechnicalKeys)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"ENGINE_WORKERS":      "8",
		"DEDUP_BACKEND":       "Redis",
		"BLOB_BACKEND":        "s3",
		"KAFKA_BROKERS":       "k1:9092, k2:9092,",
		"DIAN_TECHNICAL_KEYS": "900.123.456=clave1, 800111222=clave2",
		"S3_USE_PATH_STYLE":   "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, BackendRedis, cfg.Storage.DedupBackend)
	assert.Equal(t, BackendS3, cfg.Storage.BlobBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, map[string]string{"900123456": "clave1", "800111222": "clave2"}, cfg.DIAN.TechnicalKeys)
	assert.False(t, cfg.S3.UsePathStyle)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := map[string]map[string]any{
		"workers cero":      {"ENGINE_WORKERS": "0"},
		"dedup desconocido": {"DEDUP_BACKEND": "mongo"},
		"blob desconocido":  {"BLOB_BACKEND": "gcs"},
		"publisher":         {"PUBLISHER": "nats"},
		"clave sin nit":     {"DIAN_TECHNICAL_KEYS": "=abc"},
		"clave sin igual":   {"DIAN_TECHNICAL_KEYS": "900123456"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fromViper(newViper(values))
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "conciliador", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/conciliador?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
