package entity

import (
	"context"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
)

// Catalog is the base type for reference data.
// Examples: Product, Location.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier (unique within company)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active indicates whether the item can be used in new documents
	Active bool `db:"active" json:"active"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(companyID id.ID, code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(companyID),
		Code:       code,
		Name:       name,
		Active:     true,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(c.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	return nil
}
