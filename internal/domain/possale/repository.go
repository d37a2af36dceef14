package possale

import (
	"context"
	"time"

	"posledger/internal/core/id"
	"posledger/internal/domain"
)

// ListFilter narrows sale queries. All fields are optional.
type ListFilter struct {
	Status        Status
	PaymentStatus PaymentStatus
	LocationID    *id.ID
	CashierID     string

	// Search matches the invoice number prefix.
	Search string

	FromDate *time.Time
	ToDate   *time.Time

	Limit  int
	Offset int
}

// Repository persists sale headers and their line items.
// SaveItems replaces the full item set (delete then insert).
type Repository interface {
	Create(ctx context.Context, sale *PosSale) error
	Update(ctx context.Context, sale *PosSale) error
	Delete(ctx context.Context, companyID, saleID id.ID) error

	GetByID(ctx context.Context, companyID, saleID id.ID) (*PosSale, error)
	GetByNumber(ctx context.Context, companyID id.ID, number string) (*PosSale, error)
	List(ctx context.Context, companyID id.ID, filter ListFilter) (domain.ListResult[*PosSale], error)

	GetItems(ctx context.Context, saleID id.ID) ([]PosSaleItem, error)
	SaveItems(ctx context.Context, saleID id.ID, items []PosSaleItem) error
}
