package product

import (
	"context"

	"posledger/internal/core/id"
	"posledger/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetBySKU retrieves a product by SKU (unique within company).
	GetBySKU(ctx context.Context, companyID id.ID, sku string) (*Product, error)

	// GetByBarcode retrieves a product by barcode for POS scanning.
	GetByBarcode(ctx context.Context, companyID id.ID, barcode string) (*Product, error)
}
