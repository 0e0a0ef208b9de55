package mysql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"prediction_relay/backend/go/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	dbInstance *gorm.DB
	once       sync.Once
	initErr    error
)

// DSN builds the go-sql-driver data source name for cfg.
func DSN(cfg *config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Address,
		cfg.Database,
	)
}

// GetDB opens the GORM connection once per process and returns it.
func GetDB(ctx context.Context, cfg *config.MySQLConfig) (*gorm.DB, error) {
	once.Do(func() {
		if cfg.Address == "" {
			initErr = errors.New("mysql address is not configured")
			return
		}
		db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to MySQL: %w", err)
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			initErr = fmt.Errorf("failed to get underlying sql.DB: %w", err)
			return
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			initErr = fmt.Errorf("failed to ping MySQL: %w", err)
			return
		}
		dbInstance = db
	})

	return dbInstance, initErr
}

// Close closes the shared connection pool.
func Close() error {
	if dbInstance != nil {
		sqlDB, err := dbInstance.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		return sqlDB.Close()
	}
	return nil
}
