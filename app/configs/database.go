package configs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenConnection dials MySQL, retrying while the server is still coming up.
func OpenConnection(cfg DBConfig, appEnv string, log *zap.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if appEnv == EnvDevelopment {
		logLevel = gormlogger.Info
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		log.Info("connecting to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name),
		)

		db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(logLevel),
		})
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
					sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
					sqlDB.SetConnMaxLifetime(cfg.ConnLifetime)
					log.Info("database connection established")
					return db, nil
				}
			}
			lastErr = pingErr
			log.Warn("failed to ping database", zap.Error(pingErr), zap.Duration("retry_in", cfg.RetryDelay))
		} else {
			lastErr = err
			log.Warn("failed to open gorm connection", zap.Error(err), zap.Duration("retry_in", cfg.RetryDelay))
		}

		if i < maxRetries-1 {
			time.Sleep(cfg.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to the database after %d attempts: %w", maxRetries, lastErr)
}
