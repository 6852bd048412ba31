package domain

import "time"

// Balance is the credit count an account holds for one project.
type Balance struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Account   string    `gorm:"column:account;type:varchar(42);not null;uniqueIndex:idx_balance_account_project" json:"account"`
	ProjectID uint64    `gorm:"column:project_id;not null;uniqueIndex:idx_balance_account_project" json:"project_id"`
	Amount    int64     `gorm:"column:amount;not null;default:0" json:"amount"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Balance) TableName() string {
	return "Balances"
}
