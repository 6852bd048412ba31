package orders

import (
	"context"
	"errors"
	"time"

	"carbon-exchange/internal/application/balances"
	"carbon-exchange/internal/application/ledgerevents"
	"carbon-exchange/internal/application/projects"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/money"
	"carbon-exchange/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB        *gorm.DB
	Publisher ledgerevents.Publisher
}

// MarketOrder is an active sell order with the project details shown in the marketplace.
type MarketOrder struct {
	OrderID        uint64          `gorm:"column:order_id" json:"order_id"`
	ProjectID      uint64          `gorm:"column:project_id" json:"project_id"`
	Seller         string          `gorm:"column:seller" json:"seller"`
	Amount         int64           `gorm:"column:amount" json:"amount"`
	PricePerCredit decimal.Decimal `gorm:"column:price_per_credit" json:"price_per_credit"`
	IsActive       bool            `gorm:"column:is_active" json:"is_active"`
	CreatedAt      time.Time       `gorm:"column:createdAt" json:"createdAt"`
	ProjectName    string          `gorm:"column:project_name" json:"project_name"`
	ProjectType    string          `gorm:"column:project_type" json:"project_type"`
	Location       string          `gorm:"column:location" json:"location"`
	IsVerified     bool            `gorm:"column:is_verified" json:"is_verified"`
}

// CreateSellOrder lists amount credits of a project at price. Credits stay in the
// seller's balance; it is checked again when a buyer settles.
func (s *Service) CreateSellOrder(ctx context.Context, seller string, projectID uint64, amount int64, price decimal.Decimal) (*domain.SellOrder, error) {
	addr, ok := validation.ParseAddress(seller)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := money.CheckPrice(price); err != nil {
		return nil, err
	}

	var order domain.SellOrder
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := projects.LockProject(tx, projectID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return domain.ErrProjectInactive
		}
		bal, err := balances.Lock(tx, addr, projectID)
		if err != nil {
			return err
		}
		if bal.Amount < amount {
			return domain.ErrInsufficientBalance
		}

		order = domain.SellOrder{
			ProjectID:      projectID,
			Seller:         addr,
			Amount:         amount,
			PricePerCredit: price,
			IsActive:       true,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventOrderListed, ledgerevents.Ptr(projectID), ledgerevents.Ptr(order.OrderID), addr, map[string]interface{}{
			"seller":           addr,
			"amount":           amount,
			"price_per_credit": price.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("order_id", order.OrderID).Uint64("project_id", projectID).Int64("amount", amount).Msg("sell order listed")
	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return &order, nil
}

// CancelSellOrder withdraws an active order. Only its seller may cancel it.
func (s *Service) CancelSellOrder(ctx context.Context, caller string, orderID uint64) (*domain.SellOrder, error) {
	var order *domain.SellOrder
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		who := validation.NormalizeAddress(caller)
		if who != order.Seller {
			return domain.ErrNotOrderSeller
		}
		if !order.IsActive {
			return domain.ErrOrderInactive
		}
		order.IsActive = false
		if err := tx.Model(order).Update("is_active", false).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventOrderCancelled, ledgerevents.Ptr(order.ProjectID), ledgerevents.Ptr(order.OrderID), who, map[string]interface{}{
			"remaining": order.Amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uint64) (*domain.SellOrder, error) {
	var o domain.SellOrder
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Service) GetTotalOrders(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&domain.SellOrder{}).Count(&n).Error
	return n, err
}

// GetActiveOrders lists open orders of active projects, oldest first.
func (s *Service) GetActiveOrders(ctx context.Context) ([]MarketOrder, error) {
	out := []MarketOrder{}
	err := s.DB.WithContext(ctx).
		Table(`"SellOrders" AS o`).
		Select(`o.order_id, o.project_id, o.seller, o.amount, o.price_per_credit, o.is_active, o."createdAt", p.name AS project_name, p.project_type, p.location, p.is_verified`).
		Joins(`JOIN "Projects" AS p ON p.project_id = o.project_id`).
		Where("o.is_active = ? AND p.is_active = ? AND o.amount > 0", true, true).
		Order("o.order_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetAllOrders(ctx context.Context) ([]domain.SellOrder, error) {
	out := []domain.SellOrder{}
	if err := s.DB.WithContext(ctx).Order("order_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetSellerOrders(ctx context.Context, seller string) ([]domain.SellOrder, error) {
	if !validation.IsValidAddress(seller) {
		return nil, domain.ErrInvalidAddress
	}
	out := []domain.SellOrder{}
	err := s.DB.WithContext(ctx).
		Where("seller = ?", validation.NormalizeAddress(seller)).
		Order("order_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LockOrder loads an order for update inside tx.
func LockOrder(tx *gorm.DB, orderID uint64) (*domain.SellOrder, error) {
	var o domain.SellOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_id = ?", orderID).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}
