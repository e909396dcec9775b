package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Models 列出需要自动迁移的全部模型。
func Models() []interface{} {
	return []interface{}{
		&Restaurant{},
		&Review{},
		&User{},
		&Credential{},
		&BlogPost{},
		&BlogPostTag{},
		&Promotion{},
		&DraftReview{},
	}
}

// Open 打开数据库连接并执行自动迁移。
// driver 为空时回退到 sqlite，dsn 为空时回退到 data/dinelog.db。
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	dsn = strings.TrimSpace(dsn)

	var dialector gorm.Dialector
	switch driver {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = "data/dinelog.db"
		}
		if !strings.HasPrefix(dsn, "file:") {
			if err := ensureParentDir(dsn); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres requires DATABASE_DSN")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger(log),
		// 统一使用 UTC，保证时间列在 SQLite 中可按字典序比较
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, err
	}

	if log != nil {
		log.Info("database ready", zap.String("driver", gdb.Dialector.Name()))
	}
	return gdb, nil
}

// gormLogger 把 gorm 的慢查询与错误写入 zap，预期内的 record not found 不记录。
func gormLogger(log *zap.Logger) logger.Interface {
	if log == nil {
		log = zap.NewNop()
	}
	writer, err := zap.NewStdLogAt(log.Named("gorm"), zap.WarnLevel)
	if err != nil {
		writer = zap.NewStdLog(log.Named("gorm"))
	}
	return logger.New(writer, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
