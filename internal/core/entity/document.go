package entity

import (
	"context"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: StockMovement, PosSale.
type Document struct {
	BaseEntity

	// Number is the document number (auto-generated, unique within company)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Notes is an optional user comment
	Notes string `db:"notes" json:"notes,omitempty"`

	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewDocument creates a new Document with generated ID and business date now.
func NewDocument(companyID id.ID) Document {
	return Document{
		BaseEntity: NewBaseEntity(companyID),
		Date:       time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}
