package store

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/musicmotivate/api/internal/model"
)

// Open connects to the sqlite database and migrates the schema.
// An empty DSN opens an in-memory database.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "file::memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.Song{}, &model.TaskMapping{}, &model.StoredAudio{}); err != nil {
		return nil, err
	}

	return db, nil
}
