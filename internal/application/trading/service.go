package trading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"carbon-exchange/internal/application/balances"
	"carbon-exchange/internal/application/emails"
	"carbon-exchange/internal/application/ledgerevents"
	"carbon-exchange/internal/application/orders"
	"carbon-exchange/internal/application/platform"
	"carbon-exchange/internal/application/projects"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/money"
	"carbon-exchange/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultRetirementReason is stored when the holder gives none.
const DefaultRetirementReason = "Carbon offset"

type Service struct {
	DB          *gorm.DB
	Publisher   ledgerevents.Publisher
	EmailSender emails.Sender
}

// PurchaseCredits buys amount credits from an active order. payment is the
// native-currency amount the buyer sends; anything above the exact total is
// recorded as a refund.
func (s *Service) PurchaseCredits(ctx context.Context, buyer string, orderID uint64, amount int64, payment decimal.Decimal) (*domain.Settlement, error) {
	addr, ok := validation.ParseAddress(buyer)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := money.CheckPrecision(payment); err != nil {
		return nil, err
	}

	var settlement domain.Settlement
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := platform.LockState(tx)
		if err != nil {
			return err
		}
		order, err := orders.LockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !order.IsActive {
			return domain.ErrOrderInactive
		}
		p, err := projects.LockProject(tx, order.ProjectID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return domain.ErrProjectInactive
		}
		if amount > order.Amount {
			return domain.ErrExceedsOrder
		}
		if addr == order.Seller {
			return domain.ErrSelfTrade
		}

		total := money.Total(order.PricePerCredit, amount)
		if payment.LessThan(total) {
			return domain.ErrInsufficientPayment
		}
		fee, proceeds := money.Split(total, st.FeeBps)

		if err := balances.Debit(tx, order.Seller, order.ProjectID, amount, domain.ErrSellerInsufficientBalance); err != nil {
			return err
		}
		if err := balances.Credit(tx, addr, order.ProjectID, amount); err != nil {
			return err
		}

		remaining := order.Amount - amount
		if err := tx.Model(order).Updates(map[string]interface{}{
			"amount":    remaining,
			"is_active": remaining > 0,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(st).Update("accumulated_fees", st.AccumulatedFees.Add(fee)).Error; err != nil {
			return err
		}

		from, to := order.Seller, addr
		movement := domain.Transaction{
			Type:           domain.TxPurchase,
			ProjectID:      order.ProjectID,
			FromAccount:    &from,
			ToAccount:      &to,
			Amount:         amount,
			RelatedOrderID: &order.OrderID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		settlement = domain.Settlement{
			OrderID:        order.OrderID,
			ProjectID:      order.ProjectID,
			Buyer:          addr,
			Seller:         order.Seller,
			Amount:         amount,
			PricePerCredit: order.PricePerCredit,
			TotalPrice:     total,
			Fee:            fee,
			SellerProceeds: proceeds,
			Payment:        payment,
			Refund:         payment.Sub(total),
			TransactionID:  movement.TxID,
		}
		if err := tx.Create(&settlement).Error; err != nil {
			return err
		}

		ev, err = ledgerevents.Record(tx, domain.EventPurchaseSettled, ledgerevents.Ptr(order.ProjectID), ledgerevents.Ptr(order.OrderID), addr, map[string]interface{}{
			"buyer":           addr,
			"seller":          order.Seller,
			"amount":          amount,
			"total_price":     total.String(),
			"fee":             fee.String(),
			"seller_proceeds": proceeds.String(),
			"remaining":       remaining,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("order_id", orderID).Str("buyer", addr).Int64("amount", amount).Str("total", settlement.TotalPrice.String()).Msg("purchase settled")
	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return &settlement, nil
}

// RetireCredits burns amount credits from the holder's balance and issues a certificate.
func (s *Service) RetireCredits(ctx context.Context, account string, projectID uint64, amount int64, reason string) (*domain.Retirement, error) {
	addr, ok := validation.ParseAddress(account)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRetirementReason
	}

	var r domain.Retirement
	var projectName string
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := platform.LockState(tx)
		if err != nil {
			return err
		}
		p, err := projects.LockProject(tx, projectID)
		if err != nil {
			return err
		}
		projectName = p.Name
		if amount > math.MaxInt64-st.TotalRetired {
			return domain.ErrCreditSupplyExceeded
		}
		if err := balances.Debit(tx, addr, projectID, amount, domain.ErrInsufficientBalance); err != nil {
			return err
		}
		if err := tx.Model(p).Update("available_credits", p.AvailableCredits-amount).Error; err != nil {
			return err
		}
		if err := tx.Model(st).Update("total_retired", st.TotalRetired+amount).Error; err != nil {
			return err
		}

		from := addr
		if err := tx.Create(&domain.Transaction{
			Type:        domain.TxRetire,
			ProjectID:   projectID,
			FromAccount: &from,
			Amount:      amount,
		}).Error; err != nil {
			return err
		}

		r = domain.Retirement{
			ProjectID:         projectID,
			Account:           addr,
			Amount:            amount,
			Reason:            reason,
			CertificateNumber: certificateNumber(projectID),
			RetiredAt:         time.Now().UTC(),
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		ev, err = ledgerevents.Record(tx, domain.EventCreditsRetired, ledgerevents.Ptr(projectID), nil, addr, map[string]interface{}{
			"retirement_id":      r.RetirementID,
			"amount":             amount,
			"reason":             reason,
			"certificate_number": r.CertificateNumber,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("project_id", projectID).Str("account", addr).Int64("amount", amount).Str("certificate", r.CertificateNumber).Msg("credits retired")
	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	s.sendRetirementReceipt(ctx, r, projectName)
	return &r, nil
}

// TransferCredits moves credits between two accounts without payment.
func (s *Service) TransferCredits(ctx context.Context, from, to string, projectID uint64, amount int64) (*domain.Transaction, error) {
	src, ok := validation.ParseAddress(from)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	dst, ok := validation.ParseAddress(to)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	if src == dst {
		return nil, domain.ErrSelfTransfer
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var movement domain.Transaction
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := projects.LockProject(tx, projectID); err != nil {
			return err
		}
		if err := balances.Debit(tx, src, projectID, amount, domain.ErrInsufficientBalance); err != nil {
			return err
		}
		if err := balances.Credit(tx, dst, projectID, amount); err != nil {
			return err
		}
		movement = domain.Transaction{
			Type:        domain.TxTransfer,
			ProjectID:   projectID,
			FromAccount: &src,
			ToAccount:   &dst,
			Amount:      amount,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		var err error
		ev, err = ledgerevents.Record(tx, domain.EventCreditsTransferred, ledgerevents.Ptr(projectID), nil, src, map[string]interface{}{
			"from":   src,
			"to":     dst,
			"amount": amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return &movement, nil
}

func (s *Service) sendRetirementReceipt(ctx context.Context, r domain.Retirement, projectName string) {
	if s.EmailSender == nil {
		return
	}
	var acct domain.Account
	if err := s.DB.WithContext(ctx).Where("address = ?", r.Account).First(&acct).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("account", r.Account).Msg("retirement receipt: account lookup failed")
		}
		return
	}
	err := s.EmailSender.SendRetirementReceipt(ctx, acct.Email, acct.DisplayName, emails.RetirementReceipt{
		CertificateNumber: r.CertificateNumber,
		ProjectName:       projectName,
		ProjectID:         r.ProjectID,
		Amount:            r.Amount,
		Reason:            r.Reason,
		RetiredAt:         r.RetiredAt,
	})
	if err != nil {
		log.Warn().Err(err).Str("certificate", r.CertificateNumber).Msg("retirement receipt email failed")
	}
}

func certificateNumber(projectID uint64) string {
	return fmt.Sprintf("CERT-%06d-%s", projectID, strings.ToUpper(uuid.New().String()[:8]))
}
