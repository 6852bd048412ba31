package balances

import (
	"context"
	"errors"

	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service encapsulates balance reads.
type Service struct {
	DB *gorm.DB
}

// Holding is a non-zero balance joined with its project.
type Holding struct {
	ProjectID      uint64          `json:"project_id"`
	Amount         int64           `json:"amount"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	ProjectType    string          `json:"project_type"`
	PricePerCredit decimal.Decimal `json:"price_per_credit"`
	IsActive       bool            `json:"is_active"`
	IsVerified     bool            `json:"is_verified"`
}

// Lock loads the (account, project) balance for update. A missing row reads as zero.
func Lock(tx *gorm.DB, account string, projectID uint64) (domain.Balance, error) {
	var b domain.Balance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ? AND project_id = ?", account, projectID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Balance{Account: account, ProjectID: projectID}, nil
	}
	return b, err
}

// Credit adds amount to account's balance and records project membership on first receipt.
func Credit(tx *gorm.DB, account string, projectID uint64, amount int64) error {
	b, err := Lock(tx, account, projectID)
	if err != nil {
		return err
	}
	if b.ID == 0 {
		b.Amount = amount
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
	} else if err := tx.Model(&b).Update("amount", b.Amount+amount).Error; err != nil {
		return err
	}

	ap := domain.AccountProject{Account: account, ProjectID: projectID}
	return tx.Where("account = ? AND project_id = ?", account, projectID).FirstOrCreate(&ap).Error
}

// Debit removes amount from account's balance. It fails with insufficient if the
// balance is smaller.
func Debit(tx *gorm.DB, account string, projectID uint64, amount int64, insufficient error) error {
	b, err := Lock(tx, account, projectID)
	if err != nil {
		return err
	}
	if b.ID == 0 || b.Amount < amount {
		return insufficient
	}
	return tx.Model(&b).Update("amount", b.Amount-amount).Error
}

// BalanceOf returns the credits address holds of projectID (zero when none).
func (s *Service) BalanceOf(ctx context.Context, address string, projectID uint64) (int64, error) {
	if !validation.IsValidAddress(address) {
		return 0, domain.ErrInvalidAddress
	}
	var b domain.Balance
	err := s.DB.WithContext(ctx).
		Where("account = ? AND project_id = ?", validation.NormalizeAddress(address), projectID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return b.Amount, nil
}

// MaxBatch bounds the number of (address, project) pairs in one BalanceOfBatch call.
const MaxBatch = 500

type balanceKey struct {
	account   string
	projectID uint64
}

// BalanceOfBatch returns one balance per (addresses[i], projectIDs[i]) pair.
func (s *Service) BalanceOfBatch(ctx context.Context, addresses []string, projectIDs []uint64) ([]int64, error) {
	if len(addresses) != len(projectIDs) {
		return nil, domain.ErrLengthMismatch
	}
	if len(addresses) > MaxBatch {
		return nil, domain.ErrBatchTooLarge
	}
	out := make([]int64, len(addresses))
	if len(addresses) == 0 {
		return out, nil
	}

	accounts := make([]string, len(addresses))
	for i, a := range addresses {
		if !validation.IsValidAddress(a) {
			return nil, domain.ErrInvalidAddress
		}
		accounts[i] = validation.NormalizeAddress(a)
	}

	var rows []domain.Balance
	err := s.DB.WithContext(ctx).
		Where("account IN ? AND project_id IN ?", accounts, projectIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	found := make(map[balanceKey]int64, len(rows))
	for _, b := range rows {
		found[balanceKey{b.Account, b.ProjectID}] = b.Amount
	}
	for i := range accounts {
		out[i] = found[balanceKey{accounts[i], projectIDs[i]}]
	}
	return out, nil
}

// Holdings lists the non-zero balances of address in order of first receipt.
func (s *Service) Holdings(ctx context.Context, address string) ([]Holding, error) {
	if !validation.IsValidAddress(address) {
		return nil, domain.ErrInvalidAddress
	}
	out := []Holding{}
	err := s.DB.WithContext(ctx).
		Table(`"Balances" AS b`).
		Select(`b.project_id, b.amount, p.name, p.location, p.project_type, p.price_per_credit, p.is_active, p.is_verified`).
		Joins(`JOIN "Projects" AS p ON p.project_id = b.project_id`).
		Where("b.account = ? AND b.amount > 0", validation.NormalizeAddress(address)).
		Order("b.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
