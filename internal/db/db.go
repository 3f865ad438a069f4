package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scholarly-backend/internal/config"
)

var gormDB *gorm.DB

// InitDBFromConfig opens the database described in the DB section of the
// config and applies pool settings. The driver switch lets local setups run
// on sqlite while deployments use postgres.
func InitDBFromConfig(cfg *config.APIConfig) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DB.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DB.Names.SCHOLARLY+".db"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.Username, cfg.DB.Password.Resolve(),
			cfg.DB.Names.SCHOLARLY, cfg.DB.SSLMode)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access underlying sql.DB: %v", err)
	}
	if cfg.DB.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.Pool.MaxOpenConns)
	}
	if cfg.DB.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.Pool.MaxIdleConns)
	}
	if cfg.DB.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.Pool.ConnMaxLifetime) * time.Second)
	}

	gormDB = db
}

// GetDB returns the shared gorm handle.
func GetDB() *gorm.DB {
	return gormDB
}
