package model

import (
	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/common/logger"
)

// DB is the warm-start database handle. It is nil when persistence is
// disabled; callers must tolerate that.
var DB *gorm.DB

// InitDB opens the sqlite warm-start database and migrates the schema.
func InitDB() error {
	if config.DisablePersistence {
		logger.Logger.Info("warm-start persistence disabled")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(config.SQLitePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return errors.Wrapf(err, "open sqlite database %s", config.SQLitePath)
	}

	if err := migrateDB(db); err != nil {
		return err
	}

	DB = db
	logger.Logger.Info("warm-start database ready", zap.String("path", config.SQLitePath))
	return nil
}

func migrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&CatalogModel{}, &CatalogMeta{}); err != nil {
		return errors.Wrap(err, "migrate database schema")
	}
	return nil
}

// CloseDB releases the database handle.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return errors.Wrap(err, "get underlying sql.DB")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "close database")
	}
	return nil
}
