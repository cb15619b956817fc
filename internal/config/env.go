package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env         string `envconfig:"ENV" default:"local"`
	HTTPHost    string `envconfig:"HTTP_HOST" default:""`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	IDGenerator string `envconfig:"ID_GENERATOR" default:"ulid"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskboard"`
	Key     string `envconfig:"STORAGE_KEY" default:"columns"`
	Format  string `envconfig:"STORAGE_FORMAT" default:"json"`
	// Watch reloads external edits of the board file (local storage only).
	Watch bool `envconfig:"STORAGE_WATCH" default:"true"`
	// MemoryQuota caps the in-memory store in bytes; 0 is unlimited.
	MemoryQuota int `envconfig:"MEMORY_QUOTA" default:"0"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskboard/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// Redis settings (used when Type == "redis")
	RedisURL    string `envconfig:"REDIS_URL" default:"localhost:6379"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"taskboard"`
	// Azure Tables settings (used when Type == "aztables")
	AzureTablesConnectionString string `envconfig:"AZURE_TABLES_CONNECTION_STRING"`
	AzureTableName              string `envconfig:"AZURE_TABLE_NAME" default:"taskboard"`
	AzurePartitionKey           string `envconfig:"AZURE_PARTITION_KEY" default:"board"`
}

type Env struct {
	BaseEnv
	StorageEnv
}

const namespace = "TASKBOARD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
