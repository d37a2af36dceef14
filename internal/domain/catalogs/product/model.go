// Package product provides the Product catalog.
// Products are the sellable and stockable items tracked by the ledger.
package product

import (
	"context"

	"posledger/internal/core/apperror"
	"posledger/internal/core/entity"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// Product represents a sellable item.
type Product struct {
	entity.Catalog

	// SKU is the stock keeping unit (unique within company)
	SKU string `db:"sku" json:"sku"`

	// Barcode is the EAN/UPC code used by POS scanners
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Unit is the unit of measure (pcs, kg, l)
	Unit string `db:"unit" json:"unit"`

	// SalePrice is the default unit price used by POS terminals
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// TaxRate is the tax percentage applied on sale lines (e.g. 19 for 19%)
	TaxRate types.Money `db:"tax_rate" json:"taxRate"`

	// Description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(companyID id.ID, code, name, sku string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(companyID, code, name),
		SKU:     sku,
		Unit:    "pcs",
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	if p.TaxRate.IsNegative() {
		return apperror.NewValidation("tax rate cannot be negative").
			WithDetail("field", "taxRate")
	}

	return nil
}
