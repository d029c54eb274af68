package database

import (
	"fmt"
	"time"

	"github.com/mercadolocal/marketplace-service/internals/app/config"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func ConnectDatabase(env config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if env.LOG_LEVEL == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(env.DB_URL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

var migrated = []interface{}{
	&models.User{},
	&models.Vendor{},
	&models.Product{},
	&models.Classified{},
	&models.Follow{},
	&models.Favorite{},
	&models.Conversation{},
	&models.Message{},
	&models.Coupon{},
	&models.CouponRedemption{},
	&models.Notification{},
	&models.Payment{},
}

func AutoMigrate(db *gorm.DB) error {
	for _, model := range migrated {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	return nil
}
