package projects

import (
	"context"
	"errors"
	"math"
	"strings"

	"carbon-exchange/internal/application/balances"
	"carbon-exchange/internal/application/ledgerevents"
	"carbon-exchange/internal/application/platform"
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

// CreateProjectInput is the registration request of an issuer.
type CreateProjectInput struct {
	Name           string
	Location       string
	ProjectType    string
	TotalCredits   int64
	PricePerCredit decimal.Decimal
	MetadataURI    string
}

// CreateProject registers a project and mints all of its credits to the issuer.
func (s *Service) CreateProject(ctx context.Context, issuer string, in CreateProjectInput) (*domain.Project, error) {
	addr, ok := validation.ParseAddress(issuer)
	if !ok {
		return nil, domain.ErrInvalidAddress
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrMissingField
	}
	if in.TotalCredits <= 0 {
		return nil, domain.ErrZeroCredits
	}
	if err := money.CheckPrice(in.PricePerCredit); err != nil {
		return nil, err
	}

	p := domain.Project{
		Issuer:           addr,
		Name:             name,
		Location:         strings.TrimSpace(in.Location),
		ProjectType:      strings.TrimSpace(in.ProjectType),
		TotalCredits:     in.TotalCredits,
		AvailableCredits: in.TotalCredits,
		PricePerCredit:   in.PricePerCredit,
		IsActive:         true,
		MetadataURI:      strings.TrimSpace(in.MetadataURI),
	}
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The platform row serializes minting so the supply check below holds.
		if _, err := platform.LockState(tx); err != nil {
			return err
		}
		minted, err := mintedCredits(tx)
		if err != nil {
			return err
		}
		if in.TotalCredits > math.MaxInt64-minted {
			return domain.ErrCreditSupplyExceeded
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if err := balances.Credit(tx, addr, p.ProjectID, p.TotalCredits); err != nil {
			return err
		}
		to := addr
		if err := tx.Create(&domain.Transaction{
			Type:      domain.TxMint,
			ProjectID: p.ProjectID,
			ToAccount: &to,
			Amount:    p.TotalCredits,
		}).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventProjectRegistered, ledgerevents.Ptr(p.ProjectID), nil, addr, map[string]interface{}{
			"name":             p.Name,
			"issuer":           addr,
			"total_credits":    p.TotalCredits,
			"price_per_credit": p.PricePerCredit.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("project_id", p.ProjectID).Str("issuer", addr).Int64("credits", p.TotalCredits).Msg("project registered")
	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return &p, nil
}

// VerifyProject marks a project verified. Only the platform owner may call it.
func (s *Service) VerifyProject(ctx context.Context, verifier string, projectID uint64) (*domain.Project, error) {
	var p *domain.Project
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := platform.LockState(tx)
		if err != nil {
			return err
		}
		caller := validation.NormalizeAddress(verifier)
		if caller != st.OwnerAddress {
			return domain.ErrUnauthorized
		}
		p, err = LockProject(tx, projectID)
		if err != nil {
			return err
		}
		if p.IsVerified {
			return domain.ErrProjectAlreadyVerified
		}
		p.IsVerified = true
		if err := tx.Model(p).Update("is_verified", true).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventProjectVerified, ledgerevents.Ptr(p.ProjectID), nil, caller, map[string]interface{}{
			"verifier": caller,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return p, nil
}

// DeactivateProject stops new listings and purchases of a project. Allowed for
// the issuer and the platform owner.
func (s *Service) DeactivateProject(ctx context.Context, caller string, projectID uint64) (*domain.Project, error) {
	var p *domain.Project
	var ev domain.LedgerEvent

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := platform.LockState(tx)
		if err != nil {
			return err
		}
		p, err = LockProject(tx, projectID)
		if err != nil {
			return err
		}
		who := validation.NormalizeAddress(caller)
		if who != p.Issuer && who != st.OwnerAddress {
			return domain.ErrNotProjectIssuer
		}
		if !p.IsActive {
			return domain.ErrProjectInactive
		}
		p.IsActive = false
		if err := tx.Model(p).Update("is_active", false).Error; err != nil {
			return err
		}
		ev, err = ledgerevents.Record(tx, domain.EventProjectDeactivated, ledgerevents.Ptr(p.ProjectID), nil, who, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerevents.Dispatch(ctx, s.Publisher, ev)
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, projectID uint64) (*domain.Project, error) {
	var p domain.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetTotalProjects(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&domain.Project{}).Count(&n).Error
	return n, err
}

func (s *Service) GetAllProjects(ctx context.Context) ([]domain.Project, error) {
	out := []domain.Project{}
	if err := s.DB.WithContext(ctx).Order("project_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserProjects lists the projects address was issued or received credits of, in order of first receipt.
func (s *Service) GetUserProjects(ctx context.Context, address string) ([]uint64, error) {
	if !validation.IsValidAddress(address) {
		return nil, domain.ErrInvalidAddress
	}
	ids := []uint64{}
	err := s.DB.WithContext(ctx).Model(&domain.AccountProject{}).
		Where("account = ?", validation.NormalizeAddress(address)).
		Order("id ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// LockProject loads a project for update inside tx.
func LockProject(tx *gorm.DB, projectID uint64) (*domain.Project, error) {
	var p domain.Project
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("project_id = ?", projectID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// mintedCredits is the sum of credits ever issued across all projects. Keeping it
// within int64 bounds every balance, retirement total and the global retired counter.
func mintedCredits(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&domain.Project{}).Select("COALESCE(SUM(total_credits), 0)").Scan(&n).Error
	return n, err
}
