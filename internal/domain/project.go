package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a registered carbon-offset project. Its credits are tracked as
// per-account balances keyed by ProjectID.
type Project struct {
	ProjectID        uint64          `gorm:"column:project_id;primaryKey;autoIncrement" json:"project_id"`
	Issuer           string          `gorm:"column:issuer;type:varchar(42);not null;index" json:"issuer"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Location         string          `gorm:"column:location;not null" json:"location"`
	ProjectType      string          `gorm:"column:project_type;not null" json:"project_type"`
	TotalCredits     int64           `gorm:"column:total_credits;not null" json:"total_credits"`
	AvailableCredits int64           `gorm:"column:available_credits;not null" json:"available_credits"`
	PricePerCredit   decimal.Decimal `gorm:"column:price_per_credit;type:numeric(78,18);not null" json:"price_per_credit"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsVerified       bool            `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	MetadataURI      string          `gorm:"column:metadata_uri" json:"metadata_uri"`
	CreatedAt        time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Project) TableName() string {
	return "Projects"
}

// AccountProject records that an account was issued or received credits of a project.
type AccountProject struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Account   string    `gorm:"column:account;type:varchar(42);not null;uniqueIndex:idx_account_project" json:"account"`
	ProjectID uint64    `gorm:"column:project_id;not null;uniqueIndex:idx_account_project" json:"project_id"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (AccountProject) TableName() string {
	return "AccountProjects"
}
