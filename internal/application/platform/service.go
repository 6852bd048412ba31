package platform

import (
	"context"
	"errors"

	"carbon-exchange/internal/application/ledgerevents"
	"carbon-exchange/internal/domain"
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

// Stats is the exchange-wide summary shown on the dashboard.
type Stats struct {
	TotalProjects   int64           `json:"total_projects"`
	TotalOrders     int64           `json:"total_orders"`
	ActiveOrders    int64           `json:"active_orders"`
	FeeBps          int             `json:"fee_bps"`
	FeeCapBps       int             `json:"fee_cap_bps"`
	AccumulatedFees decimal.Decimal `json:"accumulated_fees"`
	TotalRetired    int64           `json:"total_retired"`
	OwnerAddress    string          `json:"owner_address"`
}

// LockState loads the platform row for update inside tx.
func LockState(tx *gorm.DB) (*domain.PlatformState, error) {
	var st domain.PlatformState
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", domain.PlatformStateID).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlatformNotInitialized
		}
		return nil, err
	}
	return &st, nil
}

// Ensure creates the platform row on first start. An existing row is left as is,
// so a transferred owner survives restarts.
func (s *Service) Ensure(ctx context.Context, owner string, feeBps, capBps int) (*domain.PlatformState, error) {
	var st domain.PlatformState
	err := s.DB.WithContext(ctx).Where("id = ?", domain.PlatformStateID).First(&st).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	addr, ok := validation.ParseAddress(owner)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	if capBps <= 0 || capBps > domain.MaxBasisPoints {
		return nil, domain.ErrFeeTooHigh
	}
	if feeBps < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if feeBps > capBps {
		return nil, domain.ErrFeeTooHigh
	}

	st = domain.PlatformState{
		ID:              domain.PlatformStateID,
		OwnerAddress:    addr,
		FeeBps:          feeBps,
		FeeCapBps:       capBps,
		AccumulatedFees: decimal.Zero,
	}
	if err := s.DB.WithContext(ctx).Create(&st).Error; err != nil {
		return nil, err
	}
	log.Info().Str("owner", addr).Int("fee_bps", feeBps).Int("fee_cap_bps", capBps).Msg("platform state initialized")
	return &st, nil
}

func (s *Service) State(ctx context.Context) (*domain.PlatformState, error) {
	var st domain.PlatformState
	if err := s.DB.WithContext(ctx).Where("id = ?", domain.PlatformStateID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlatformNotInitialized
		}
		return nil, err
	}
	return &st, nil
}

// IsOwner reports whether address is the current platform owner.
func (s *Service) IsOwner(ctx context.Context, address string) (bool, error) {
	st, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	return validation.NormalizeAddress(address) == st.OwnerAddress, nil
}

func (s *Service) GetOwner(ctx context.Context) (string, error) {
	st, err := s.State(ctx)
	if err != nil {
		return "", err
	}
	return st.OwnerAddress, nil
}

func (s *Service) GetFee(ctx context.Context) (int, error) {
	st, err := s.State(ctx)
	if err != nil {
		return 0, err
	}
	return st.FeeBps, nil
}

func (s *Service) GetAccumulatedFees(ctx context.Context) (decimal.Decimal, error) {
	st, err := s.State(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return st.AccumulatedFees, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	out := &Stats{
		FeeBps:          st.FeeBps,
		FeeCapBps:       st.FeeCapBps,
		AccumulatedFees: st.AccumulatedFees,
		TotalRetired:    st.TotalRetired,
		OwnerAddress:    st.OwnerAddress,
	}
	db := s.DB.WithContext(ctx)
	if err := db.Model(&domain.Project{}).Count(&out.TotalProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.SellOrder{}).Count(&out.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.SellOrder{}).Where("is_active = ?", true).Count(&out.ActiveOrders).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePlatformFee sets the fee in basis points. Only the owner may call it.
func (s *Service) UpdatePlatformFee(ctx context.Context, caller string, bps int) (*domain.PlatformState, error) {
	var st *domain.PlatformState
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		st, err = lockAsOwner(tx, caller)
		if err != nil {
			return err
		}
		if bps < 0 {
			return domain.ErrInvalidAmount
		}
		if bps > st.FeeCapBps {
			return domain.ErrFeeTooHigh
		}

		old := st.FeeBps
		st.FeeBps = bps
		if err := tx.Model(st).Update("fee_bps", bps).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventPlatformFeeUpdated, nil, nil, st.OwnerAddress, map[string]interface{}{
			"old_fee_bps": old,
			"new_fee_bps": bps,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return st, nil
}

// WithdrawFees pays all accumulated fees to the owner and resets the balance to zero.
func (s *Service) WithdrawFees(ctx context.Context, caller string) (*domain.FeeWithdrawal, error) {
	var w domain.FeeWithdrawal
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := lockAsOwner(tx, caller)
		if err != nil {
			return err
		}
		if !st.AccumulatedFees.IsPositive() {
			return domain.ErrNoFees
		}

		w = domain.FeeWithdrawal{Recipient: st.OwnerAddress, Amount: st.AccumulatedFees}
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
		if err := tx.Model(st).Update("accumulated_fees", decimal.Zero).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventFeesWithdrawn, nil, nil, st.OwnerAddress, map[string]interface{}{
			"withdrawal_id": w.WithdrawalID,
			"recipient":     w.Recipient,
			"amount":        w.Amount.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return &w, nil
}

// TransferOwnership hands the privileged role to newOwner.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner string) (*domain.PlatformState, error) {
	next, ok := validation.ParseAddress(newOwner)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}

	var st *domain.PlatformState
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		st, err = lockAsOwner(tx, caller)
		if err != nil {
			return err
		}
		prev := st.OwnerAddress
		st.OwnerAddress = next
		if err := tx.Model(st).Update("owner_address", next).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventOwnershipTransferred, nil, nil, prev, map[string]interface{}{
			"previous_owner": prev,
			"new_owner":      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return st, nil
}

func lockAsOwner(tx *gorm.DB, caller string) (*domain.PlatformState, error) {
	st, err := LockState(tx)
	if err != nil {
		return nil, err
	}
	if validation.NormalizeAddress(caller) != st.OwnerAddress {
		return nil, domain.ErrUnauthorized
	}
	return st, nil
}
