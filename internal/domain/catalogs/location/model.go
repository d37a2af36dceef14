// Package location provides the Location catalog.
// Locations are stores and warehouses where stock is held.
package location

import (
	"context"

	"posledger/internal/core/apperror"
	"posledger/internal/core/entity"
	"posledger/internal/core/id"
)

// LocationType defines the type of location.
type LocationType string

const (
	TypeStore     LocationType = "store"
	TypeWarehouse LocationType = "warehouse"
)

// Location represents a place where stock is held.
type Location struct {
	entity.Catalog

	// Type defines the location category
	Type LocationType `db:"type" json:"type"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsDefault marks the location used when a sale does not name one
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewLocation creates a new Location with required fields.
func NewLocation(companyID id.ID, code, name string, locType LocationType) *Location {
	return &Location{
		Catalog: entity.NewCatalog(companyID, code, name),
		Type:    locType,
	}
}

// Validate implements entity.Validatable interface.
func (l *Location) Validate(ctx context.Context) error {
	if err := l.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch l.Type {
	case TypeStore, TypeWarehouse:
	default:
		return apperror.NewValidation("invalid location type").
			WithDetail("field", "type").
			WithDetail("value", string(l.Type))
	}

	return nil
}
