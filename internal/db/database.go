package db

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DatabaseManager struct {
	historyDb *gorm.DB
}

// NewDatabaseManager opens (or creates) history.db under dbDir.
func NewDatabaseManager(dbDir string) *DatabaseManager {
	dm := &DatabaseManager{}
	dm.initDB(dbDir)
	return dm
}

func (dm *DatabaseManager) initDB(dbDir string) {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	historyPath := filepath.Join(dbDir, "history.db")
	historyDb, err := gorm.Open(sqlite.Open(historyPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to history database: %v", err)
	}
	dm.historyDb = historyDb
	log.Debugf("History database connected successfully, path: %s", historyPath)

	dm.autoMigrate()
	log.Debugf("Database migration completed successfully")
}

func (dm *DatabaseManager) GetHistoryDB() *gorm.DB {
	return dm.historyDb
}

func (dm *DatabaseManager) Close() {
	sqlDb, err := dm.historyDb.DB()
	if err != nil {
		return
	}
	if err := sqlDb.Close(); err != nil {
		log.Warnf("Failed to close history database: %v", err)
	}
}
