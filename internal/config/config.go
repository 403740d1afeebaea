// Package config loads rentledger settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"rentledger/internal/blob"
	"rentledger/internal/core"
)

// Config is the process configuration.
type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	Log struct {
		Level  string
		Format string // json or console
	}
	TraceFile string // JSON-lines span log; empty disables tracing

	Storage     core.StorageConfig
	Blob        blob.Config
	ExportQueue int
}

// Load reads settings from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.HTTPAddr = GetEnv("RENTLEDGER_HTTP_ADDR", ":8080")
	cfg.CORSOrigins = splitList(GetEnv("RENTLEDGER_CORS_ORIGINS", "*"))
	cfg.Log.Level = GetEnv("RENTLEDGER_LOG_LEVEL", "info")
	cfg.Log.Format = GetEnv("RENTLEDGER_LOG_FORMAT", "json")
	cfg.TraceFile = GetEnv("RENTLEDGER_TRACE_FILE")

	cfg.Storage = core.StorageConfig{
		Driver:        core.StorageDriver(GetEnv("RENTLEDGER_STORAGE_DRIVER", string(core.StorageSQLite))),
		SQLitePath:    GetEnv("RENTLEDGER_SQLITE_PATH", "rentledger.db"),
		PostgresDSN:   GetEnv("RENTLEDGER_POSTGRES_DSN"),
		RedisAddr:     GetEnv("RENTLEDGER_REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetEnv("RENTLEDGER_REDIS_PASSWORD"),
		RedisPrefix:   GetEnv("RENTLEDGER_REDIS_PREFIX", "rentledger"),
	}
	db, err := intEnv("RENTLEDGER_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Storage.RedisDB = db

	switch cfg.Storage.Driver {
	case core.StorageMemory, core.StorageSQLite, core.StorageRedis:
	case core.StoragePostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, fmt.Errorf("RENTLEDGER_POSTGRES_DSN required for postgres storage")
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	pathStyle, err := boolEnv("RENTLEDGER_BLOB_S3_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}
	cfg.Blob = blob.Config{
		Driver: blob.Driver(GetEnv("RENTLEDGER_BLOB_DRIVER", string(blob.DriverFilesystem))),
		FSRoot: GetEnv("RENTLEDGER_BLOB_FS_ROOT", "./documents"),
		S3: blob.S3Config{
			Bucket:          GetEnv("RENTLEDGER_BLOB_S3_BUCKET"),
			Region:          GetEnv("RENTLEDGER_BLOB_S3_REGION", "us-east-1"),
			Endpoint:        GetEnv("RENTLEDGER_BLOB_S3_ENDPOINT"),
			PathStyle:       pathStyle,
			AccessKeyID:     GetEnv("RENTLEDGER_BLOB_S3_ACCESS_KEY_ID"),
			SecretAccessKey: GetEnv("RENTLEDGER_BLOB_S3_SECRET_ACCESS_KEY"),
		},
	}
	if cfg.Blob.Driver == blob.DriverS3 && cfg.Blob.S3.Bucket == "" {
		return nil, fmt.Errorf("RENTLEDGER_BLOB_S3_BUCKET required for s3 blob driver")
	}

	queue, err := intEnv("RENTLEDGER_EXPORT_QUEUE", 64)
	if err != nil {
		return nil, err
	}
	if queue <= 0 {
		return nil, fmt.Errorf("RENTLEDGER_EXPORT_QUEUE must be positive, got %d", queue)
	}
	cfg.ExportQueue = queue
	return cfg, nil
}

// GetEnv returns the variable's value, or the first default when it is unset
// or empty.
func GetEnv(key string, defaultValue ...string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func intEnv(key string, def int) (int, error) {
	raw := GetEnv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := GetEnv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
