package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todayiwatched/internal/logging"
	"todayiwatched/internal/models"
)

// Open 连接 Postgres 并自动迁移 recommendations 表
func Open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logging.Info().Msg("Database connection established")

	if err := conn.AutoMigrate(&models.Recommendation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logging.Info().Msg("Database migration completed")

	return conn, nil
}
