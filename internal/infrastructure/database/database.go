package database

import (
	"carbon-exchange/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// Models lists every table the ledger owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.Account{},
		&domain.PlatformState{},
		&domain.Project{},
		&domain.AccountProject{},
		&domain.Balance{},
		&domain.SellOrder{},
		&domain.Transaction{},
		&domain.Settlement{},
		&domain.Retirement{},
		&domain.FeeWithdrawal{},
		&domain.LedgerEvent{},
	}
}

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
