package db

import (
	"time"

	"github.com/goatnetwork/goat-staking/internal/db/migrations"
	log "github.com/sirupsen/logrus"
)

// OperationRecord is one mutating operation and its last known lifecycle status
type OperationRecord struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	OperationId string    `gorm:"not null;uniqueIndex" json:"id"`
	Kind        string    `gorm:"not null" json:"kind"`
	Account     string    `gorm:"not null" json:"account"`
	Amount      string    `json:"amount"` // smallest units, or seconds for setDuration
	TxHash      string    `json:"tx_hash"`
	Status      string    `gorm:"not null" json:"status"` // "submitted", "confirming", "confirmed", "failed", "abandoned"
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (dm *DatabaseManager) autoMigrate() {
	if err := dm.historyDb.AutoMigrate(&OperationRecord{}); err != nil {
		log.Fatalf("Failed to migrate history database: %v", err)
	}

	mm := migrations.NewMigrationManager(dm.historyDb)
	if err := mm.EnsureMigrationTable(); err != nil {
		log.Fatalf("Failed to create migrations table: %v", err)
	}
	if err := mm.RunMigration(migrations.AddOperationAccountIndexName, migrations.AddOperationAccountIndex); err != nil {
		log.Fatalf("Failed to run history migrations: %v", err)
	}
}
