package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"polling-backend/config"
	"polling-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database handle. Tests swap it for an in-memory
// sqlite connection.
var DB *gorm.DB

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg *config.Config) error {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	gormCfg := &gorm.Config{
		Logger: gormLogger,
		// Duplicate-key errors from either driver surface as
		// gorm.ErrDuplicatedKey; vote admission depends on this.
		TranslateError: true,
	}

	var err error
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		DB, err = gorm.Open(mysql.Open(dsn), gormCfg)
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", cfg.SQLitePath)
		DB, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	return Migrate(DB)
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.PollOption{},
		&models.Vote{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CloseDB closes the underlying connection pool.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
