package location

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/domain"
	"posledger/pkg/numerator"
)

// Service provides business logic for the Location catalog.
type Service struct {
	*domain.CatalogService[*Location]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Location service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Location]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "location",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)
	base.Hooks().On(domain.BeforeUpdate, svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and default flag.
func (s *Service) prepareForCreate(ctx context.Context, l *Location) error {
	if l.Code == "" {
		code, err := s.numerator.NextNumber(ctx, l.CompanyID, numerator.DocumentConfig("LOC"), time.Now())
		if err != nil {
			return fmt.Errorf("generate location code: %w", err)
		}
		l.Code = code
	}

	if l.IsDefault {
		if err := s.repo.ClearDefault(ctx, l.CompanyID); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate keeps at most one default location per company.
func (s *Service) prepareForUpdate(ctx context.Context, l *Location) error {
	if l.IsDefault {
		if err := s.repo.ClearDefault(ctx, l.CompanyID); err != nil {
			return err
		}
	}
	return nil
}

// GetDefault retrieves the default location for a company.
func (s *Service) GetDefault(ctx context.Context, companyID id.ID) (*Location, error) {
	l, err := s.repo.GetDefault(ctx, companyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("default location", companyID.String())
		}
		return nil, err
	}
	return l, nil
}
