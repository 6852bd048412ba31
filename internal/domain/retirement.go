package domain

import "time"

// Retirement is an append-only record of credits burned as proof of offset.
type Retirement struct {
	RetirementID      uint64    `gorm:"column:retirement_id;primaryKey;autoIncrement" json:"retirement_id"`
	ProjectID         uint64    `gorm:"column:project_id;not null;index" json:"project_id"`
	Account           string    `gorm:"column:account;type:varchar(42);not null;index" json:"account"`
	Amount            int64     `gorm:"column:amount;not null" json:"amount"`
	Reason            string    `gorm:"column:reason" json:"reason"`
	CertificateNumber string    `gorm:"column:certificate_number;uniqueIndex;not null" json:"certificate_number"`
	RetiredAt         time.Time `gorm:"column:retired_at;not null" json:"retired_at"`
}

func (Retirement) TableName() string {
	return "Retirements"
}
