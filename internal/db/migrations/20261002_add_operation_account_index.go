package migrations

import (
	"gorm.io/gorm"
)

const AddOperationAccountIndexName = "20261002_add_operation_account_index"

// AddOperationAccountIndex indexes history by account for the per-account listing
func AddOperationAccountIndex(tx *gorm.DB) error {
	return tx.Exec("CREATE INDEX IF NOT EXISTS operation_records_account_created ON operation_records (account, created_at)").Error
}
