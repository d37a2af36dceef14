package location

import (
	"context"

	"posledger/internal/core/id"
	"posledger/internal/domain"
)

// Repository defines the interface for Location persistence.
type Repository interface {
	domain.CatalogRepository[*Location]

	// GetDefault retrieves the default location for a company.
	GetDefault(ctx context.Context, companyID id.ID) (*Location, error)

	// ClearDefault clears the default flag on all company locations.
	ClearDefault(ctx context.Context, companyID id.ID) error
}
