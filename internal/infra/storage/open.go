package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/ai-detector/internal/config"
	"github.com/bryanwahyu/ai-detector/internal/infra/db"
)

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch driver := strings.ToLower(cfg.Driver); driver {
	case "", "file":
		dir := cfg.Path
		if dir == "" {
			dir = ".ai-detector"
		}
		return NewFile(dir)
	case "memory":
		return NewMemory(), nil
	case db.DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.Path, "history.db")
		}
		return OpenSQL(ctx, driver, dsn)
	case db.DriverMySQL, db.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage driver %s requires a dsn", driver)
		}
		return OpenSQL(ctx, driver, cfg.DSN)
	case "minio", "s3":
		m := cfg.Minio
		return NewObject(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
