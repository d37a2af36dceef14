package product

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

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().On(domain.BeforeCreate, svc.prepareForCreate)

	return svc
}

// prepareForCreate generates code and checks SKU uniqueness.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.numerator.NextNumber(ctx, p.CompanyID, numerator.DocumentConfig("PRD"), time.Now())
		if err != nil {
			return fmt.Errorf("generate product code: %w", err)
		}
		p.Code = code
	}

	existing, err := s.repo.GetBySKU(ctx, p.CompanyID, p.SKU)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewConflict("product with this SKU already exists").
			WithDetail("sku", p.SKU)
	}

	return nil
}

// GetBySKU retrieves a product by SKU.
func (s *Service) GetBySKU(ctx context.Context, companyID id.ID, sku string) (*Product, error) {
	p, err := s.repo.GetBySKU(ctx, companyID, sku)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, err
	}
	return p, nil
}

// GetByBarcode retrieves a product by barcode.
func (s *Service) GetByBarcode(ctx context.Context, companyID id.ID, barcode string) (*Product, error) {
	p, err := s.repo.GetByBarcode(ctx, companyID, barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, err
	}
	return p, nil
}
