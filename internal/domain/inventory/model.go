// Package inventory provides the inventory ledger and stock mutation engine.
// Per (product, location) pair it tracks an on-hand quantity and a reserved
// quantity, and records every change as an immutable typed movement entry.
package inventory

import (
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// MovementType defines the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// ReferenceType is the business reason for a movement.
type ReferenceType string

const (
	RefOpeningStock  ReferenceType = "OPENING_STOCK"
	RefAdjustment    ReferenceType = "ADJUSTMENT"
	RefTransfer      ReferenceType = "TRANSFER"
	RefOrderPurchase ReferenceType = "ORDER_PURCHASE"
	RefPosSale       ReferenceType = "POS_SALE"
	RefPosReturn     ReferenceType = "POS_RETURN"

	// refOrderSell is a deprecated alias still sent by old POS builds.
	refOrderSell ReferenceType = "ORDER_SELL"
)

// NormalizeReferenceType maps deprecated aliases onto their current value.
func NormalizeReferenceType(rt ReferenceType) ReferenceType {
	if rt == refOrderSell {
		return RefPosSale
	}
	return rt
}

// IsDirectlyCreatable reports whether the reference type may be used by the
// stock movement service. Sale and return movements are written only through
// their owning document flows.
func (rt ReferenceType) IsDirectlyCreatable() bool {
	switch rt {
	case RefOpeningStock, RefAdjustment, RefTransfer, RefOrderPurchase:
		return true
	}
	return false
}

// ValidCombination reports whether the reference type may pair with the
// movement type.
func ValidCombination(rt ReferenceType, mt MovementType) bool {
	switch rt {
	case RefOpeningStock, RefOrderPurchase, RefPosReturn:
		return mt == MovementIn
	case RefPosSale:
		return mt == MovementOut
	case RefAdjustment, RefTransfer:
		return mt == MovementIn || mt == MovementOut
	}
	return false
}

// InventoryRecord is the current stock snapshot for one (product, location)
// pair. Created lazily on first IN movement, never deleted.
type InventoryRecord struct {
	ID        id.ID `db:"id" json:"id"`
	CompanyID id.ID `db:"company_id" json:"companyId"`

	ProductID  id.ID `db:"product_id" json:"productId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	// Quantity is the physical on-hand amount. Never negative.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Reserved is the soft-held amount. May exceed Quantity.
	Reserved types.Quantity `db:"reserved_quantity" json:"reservedQuantity"`

	LastUpdated time.Time `db:"last_updated" json:"lastUpdated"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// NewInventoryRecord creates a zero-quantity record for a pair.
func NewInventoryRecord(companyID, productID, locationID id.ID) *InventoryRecord {
	now := time.Now().UTC()
	return &InventoryRecord{
		ID:          id.New(),
		CompanyID:   companyID,
		ProductID:   productID,
		LocationID:  locationID,
		LastUpdated: now,
		CreatedAt:   now,
	}
}

// Available returns quantity minus reserved. May be negative when
// reservations exceed physical stock.
func (r *InventoryRecord) Available() types.Quantity {
	return r.Quantity.Sub(r.Reserved)
}

// MovementEntry is one immutable row of the stock ledger.
type MovementEntry struct {
	ID        id.ID `db:"id" json:"id"`
	CompanyID id.ID `db:"company_id" json:"companyId"`

	ProductID  id.ID `db:"product_id" json:"productId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	// Quantity is always positive; direction comes from MovementType.
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	MovementType  MovementType   `db:"movement_type" json:"movementType"`
	ReferenceType ReferenceType  `db:"reference_type" json:"referenceType"`

	// ReferenceID points to the originating document (sale, adjustment)
	ReferenceID *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy *string   `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedQuantity returns quantity with direction applied.
// IN is positive, OUT is negative.
func (m *MovementEntry) SignedQuantity() types.Quantity {
	if m.MovementType == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// Movement is the input for one stock mutation.
type Movement struct {
	CompanyID     id.ID
	ProductID     id.ID
	LocationID    id.ID
	Quantity      types.Quantity
	MovementType  MovementType
	ReferenceType ReferenceType
	ReferenceID   *id.ID
	Notes         *string
	CreatedBy     *string
}

// Validate checks the movement input before any database work.
func (m *Movement) Validate() error {
	if id.IsNil(m.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if id.IsNil(m.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if id.IsNil(m.LocationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}
	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", m.Quantity.String())
	}
	if m.MovementType != MovementIn && m.MovementType != MovementOut {
		return apperror.NewValidation("movement type must be IN or OUT").
			WithDetail("field", "movementType").
			WithDetail("value", string(m.MovementType))
	}
	return nil
}
