package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is an authenticated caller bound to one ledger address.
type Account struct {
	AccountID    uuid.UUID      `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	Address      string         `gorm:"column:address;type:varchar(42);not null;uniqueIndex" json:"address"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	DisplayName  string         `gorm:"column:display_name;not null" json:"display_name"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Account) TableName() string {
	return "Accounts"
}

// BeforeCreate sets AccountID if not set (for DBs without gen_random_uuid).
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.AccountID == uuid.Nil {
		a.AccountID = uuid.New()
	}
	return nil
}
