package transactions

import (
	"context"

	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// FormattedTx is one history row as seen by the queried address.
type FormattedTx struct {
	TxID           uuid.UUID   `json:"tx_id"`
	Type           string      `json:"type"`
	Direction      string      `json:"direction"`
	Amount         int64       `json:"amount"`
	CreatedAt      interface{} `json:"created_at"`
	FromAccount    *string     `json:"from_account"`
	ToAccount      *string     `json:"to_account"`
	ProjectID      uint64      `json:"project_id"`
	ProjectName    *string     `json:"project_name"`
	RelatedOrderID *uint64     `json:"related_order_id,omitempty"`
}

// ViewTransactions returns every credit movement touching address, newest first.
func (s *Service) ViewTransactions(ctx context.Context, address string) ([]FormattedTx, error) {
	if !validation.IsValidAddress(address) {
		return nil, domain.ErrInvalidAddress
	}
	addr := validation.NormalizeAddress(address)

	var txs []domain.Transaction
	if err := s.DB.WithContext(ctx).
		Where("from_account = ? OR to_account = ?", addr, addr).
		Order(`"createdAt" DESC`).
		Find(&txs).Error; err != nil {
		return nil, err
	}

	if len(txs) == 0 {
		return []FormattedTx{}, nil
	}

	projIDs := map[uint64]bool{}
	for _, tx := range txs {
		projIDs[tx.ProjectID] = true
	}
	ids := make([]uint64, 0, len(projIDs))
	for id := range projIDs {
		ids = append(ids, id)
	}
	var projs []domain.Project
	if err := s.DB.WithContext(ctx).Where("project_id IN ?", ids).Select("project_id, name").Find(&projs).Error; err != nil {
		return nil, err
	}
	projMap := map[uint64]string{}
	for _, p := range projs {
		projMap[p.ProjectID] = p.Name
	}

	out := make([]FormattedTx, len(txs))
	for i, tx := range txs {
		ft := FormattedTx{
			TxID:           tx.TxID,
			Type:           tx.Type,
			Direction:      "out",
			Amount:         tx.Amount,
			CreatedAt:      tx.CreatedAt,
			FromAccount:    tx.FromAccount,
			ToAccount:      tx.ToAccount,
			ProjectID:      tx.ProjectID,
			RelatedOrderID: tx.RelatedOrderID,
		}
		if tx.ToAccount != nil && *tx.ToAccount == addr {
			ft.Direction = "in"
		}
		if name, ok := projMap[tx.ProjectID]; ok {
			ft.ProjectName = &name
		}
		out[i] = ft
	}

	return out, nil
}
