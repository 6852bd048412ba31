package retirements

import (
	"context"
	"errors"
	"strings"

	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/validation"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// GetUserRetiredCredits is the total an address has retired across all projects.
func (s *Service) GetUserRetiredCredits(ctx context.Context, address string) (int64, error) {
	if !validation.IsValidAddress(address) {
		return 0, domain.ErrInvalidAddress
	}
	var total int64
	err := s.DB.WithContext(ctx).Model(&domain.Retirement{}).
		Where("account = ?", validation.NormalizeAddress(address)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// GetProjectRetirements lists the retirements of a project in the order they happened.
func (s *Service) GetProjectRetirements(ctx context.Context, projectID uint64) ([]domain.Retirement, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.Project{}).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrProjectNotFound
	}

	out := []domain.Retirement{}
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("retirement_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetCertificate(ctx context.Context, certificateNumber string) (*domain.Retirement, error) {
	number := strings.ToUpper(strings.TrimSpace(certificateNumber))
	if number == "" {
		return nil, domain.ErrMissingField
	}
	var r domain.Retirement
	if err := s.DB.WithContext(ctx).Where("certificate_number = ?", number).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, err
	}
	return &r, nil
}
