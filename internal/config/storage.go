package config

import (
	"context"
	"fmt"

	"github.com/kazz187/taskboard/pkg/storage"
)

// OpenStorage builds the storage backend selected by Type.
func (e *StorageEnv) OpenStorage(ctx context.Context) (storage.Storage, error) {
	switch e.Type {
	case "", "local":
		return storage.NewLocalStorage(e.BaseDir)
	case "memory":
		return storage.NewMemoryStorage(e.MemoryQuota), nil
	case "s3":
		if e.S3Bucket == "" {
			return nil, fmt.Errorf("TASKBOARD_S3_BUCKET is required for s3 storage")
		}
		return storage.NewS3Storage(ctx, e.S3Bucket, e.S3Prefix, e.S3Region)
	case "redis":
		return storage.NewRedisStorageFromURL(e.RedisURL, e.RedisPrefix)
	case "aztables":
		if e.AzureTablesConnectionString == "" {
			return nil, fmt.Errorf("TASKBOARD_AZURE_TABLES_CONNECTION_STRING is required for aztables storage")
		}
		return storage.NewTableStorage(ctx, e.AzureTablesConnectionString, e.AzureTableName, e.AzurePartitionKey)
	}
	return nil, fmt.Errorf("unknown storage type %q", e.Type)
}
