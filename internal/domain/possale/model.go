// Package possale provides the POS sale document and its orchestrator.
// A sale owns its line items and, when completed and paid at creation time,
// its inventory effects: every item produces one POS_SALE/OUT ledger entry
// inside the same transaction as the header and line inserts.
package possale

import (
	"context"

	"posledger/internal/core/apperror"
	"posledger/internal/core/entity"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks whether the sale has been paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

// PosSale is a point-of-sale receipt. Number holds the invoice number
// (PREFIX-YYYYMMDD-NNNN, assigned on create).
type PosSale struct {
	entity.Document

	LocationID id.ID  `db:"location_id" json:"locationId"`
	TerminalID string `db:"terminal_id" json:"terminalId,omitempty"`
	ClientID   *id.ID `db:"client_id" json:"clientId,omitempty"`

	CashierID     string `db:"cashier_id" json:"cashierId"`
	PaymentMethod string `db:"payment_method" json:"paymentMethod"`

	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	// Totals (calculated from items)
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	TaxTotal      types.Money `db:"tax_total" json:"taxTotal"`
	Total         types.Money `db:"total" json:"total"`

	// Table part: sold goods
	Items []PosSaleItem `db:"-" json:"items"`
}

// PosSaleItem is one line of the receipt.
type PosSaleItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Discount  types.Money    `db:"discount" json:"discount"`
	Tax       types.Money    `db:"tax" json:"tax"`
	LineTotal types.Money    `db:"line_total" json:"lineTotal"`
}

// NewPosSale creates a pending, unpaid sale for a location.
func NewPosSale(companyID, locationID id.ID, cashierID string) *PosSale {
	return &PosSale{
		Document:      entity.NewDocument(companyID),
		LocationID:    locationID,
		CashierID:     cashierID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Items:         make([]PosSaleItem, 0),
	}
}

// AddItem appends a line and recalculates totals.
// line_total = quantity*unit_price - discount + tax.
func (s *PosSale) AddItem(productID id.ID, quantity types.Quantity, unitPrice, discount, tax types.Money) {
	item := PosSaleItem{
		LineID:    id.New(),
		LineNo:    len(s.Items) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Discount:  discount,
		Tax:       tax,
	}
	item.LineTotal = lineTotal(item)

	s.Items = append(s.Items, item)
	s.RecalculateTotals()
}

func lineTotal(item PosSaleItem) types.Money {
	return item.Quantity.Decimal().Mul(item.UnitPrice).Sub(item.Discount).Add(item.Tax)
}

// RecalculateTotals recomputes the header totals and each line total.
// Called before persisting so that client-supplied totals never win.
func (s *PosSale) RecalculateTotals() {
	s.Subtotal = types.Zero()
	s.DiscountTotal = types.Zero()
	s.TaxTotal = types.Zero()
	s.Total = types.Zero()

	for i := range s.Items {
		s.Items[i].LineNo = i + 1
		if id.IsNil(s.Items[i].LineID) {
			s.Items[i].LineID = id.New()
		}
		s.Items[i].LineTotal = lineTotal(s.Items[i])

		s.Subtotal = s.Subtotal.Add(s.Items[i].Quantity.Decimal().Mul(s.Items[i].UnitPrice))
		s.DiscountTotal = s.DiscountTotal.Add(s.Items[i].Discount)
		s.TaxTotal = s.TaxTotal.Add(s.Items[i].Tax)
		s.Total = s.Total.Add(s.Items[i].LineTotal)
	}
}

// Validate implements entity.Validatable.
func (s *PosSale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.LocationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}
	if s.CashierID == "" {
		return apperror.NewValidation("cashier is required").
			WithDetail("field", "cashierId")
	}
	if s.PaymentMethod == "" {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "paymentMethod")
	}
	if !s.Status.Valid() {
		return apperror.NewValidation("invalid sale status").
			WithDetail("field", "status").
			WithDetail("value", string(s.Status))
	}
	if !s.PaymentStatus.Valid() {
		return apperror.NewValidation("invalid payment status").
			WithDetail("field", "paymentStatus").
			WithDetail("value", string(s.PaymentStatus))
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, item := range s.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.Discount.IsNegative() {
			return apperror.NewValidation("discount must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.Tax.IsNegative() {
			return apperror.NewValidation("tax must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// DecrementsInventory reports whether persisting this sale must also
// write stock. Only a sale that is completed and paid touches inventory.
func (s *PosSale) DecrementsInventory() bool {
	return s.Status == StatusCompleted && s.PaymentStatus == PaymentPaid
}
