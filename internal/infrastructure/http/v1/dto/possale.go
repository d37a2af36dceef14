package dto

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/possale"
)

// --- Request DTOs ---

// CreateSaleRequest creates a POS sale. Totals are recomputed on the
// server; any totals the client sends are ignored.
type CreateSaleRequest struct {
	Date          *time.Time        `json:"date,omitempty"`
	LocationID    string            `json:"locationId" binding:"required"`
	TerminalID    string            `json:"terminalId,omitempty"`
	ClientID      *string           `json:"clientId,omitempty"`
	CashierID     string            `json:"cashierId" binding:"required"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Status        string            `json:"status,omitempty"`
	PaymentStatus string            `json:"paymentStatus,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SaleItemRequest is one receipt line.
type SaleItemRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
	Discount  types.Money    `json:"discount"`
	Tax       types.Money    `json:"tax"`
}

// ToEntity converts the request to a domain sale.
func (r *CreateSaleRequest) ToEntity(companyID id.ID) (*possale.PosSale, error) {
	locationID, err := id.Parse(r.LocationID)
	if err != nil {
		return nil, err
	}

	sale := possale.NewPosSale(companyID, locationID, r.CashierID)
	sale.TerminalID = r.TerminalID
	sale.PaymentMethod = r.PaymentMethod
	sale.Notes = r.Notes

	if r.Date != nil {
		sale.Date = *r.Date
	}
	if r.ClientID != nil {
		clientID, err := id.Parse(*r.ClientID)
		if err != nil {
			return nil, err
		}
		sale.ClientID = &clientID
	}
	if r.Status != "" {
		sale.Status = possale.Status(r.Status)
	}
	if r.PaymentStatus != "" {
		sale.PaymentStatus = possale.PaymentStatus(r.PaymentStatus)
	}

	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		sale.AddItem(productID, item.Quantity, item.UnitPrice, item.Discount, item.Tax)
	}

	return sale, nil
}

// UpdateSaleRequest modifies a sale. Nil fields stay unchanged; a
// non-empty item list replaces the whole table part.
type UpdateSaleRequest struct {
	Date          *time.Time        `json:"date,omitempty"`
	TerminalID    *string           `json:"terminalId,omitempty"`
	ClientID      *string           `json:"clientId,omitempty"`
	PaymentMethod *string           `json:"paymentMethod,omitempty"`
	Status        *string           `json:"status,omitempty"`
	PaymentStatus *string           `json:"paymentStatus,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	Items         []SaleItemRequest `json:"items,omitempty"`
}

// ApplyTo overlays the request onto an existing sale.
func (r *UpdateSaleRequest) ApplyTo(sale *possale.PosSale) error {
	if r.Date != nil {
		sale.Date = *r.Date
	}
	if r.TerminalID != nil {
		sale.TerminalID = *r.TerminalID
	}
	if r.ClientID != nil {
		clientID, err := id.Parse(*r.ClientID)
		if err != nil {
			return err
		}
		sale.ClientID = &clientID
	}
	if r.PaymentMethod != nil {
		sale.PaymentMethod = *r.PaymentMethod
	}
	if r.Status != nil {
		sale.Status = possale.Status(*r.Status)
	}
	if r.PaymentStatus != nil {
		sale.PaymentStatus = possale.PaymentStatus(*r.PaymentStatus)
	}
	if r.Notes != nil {
		sale.Notes = *r.Notes
	}

	if len(r.Items) > 0 {
		sale.Items = make([]possale.PosSaleItem, 0, len(r.Items))
		for _, item := range r.Items {
			productID, err := id.Parse(item.ProductID)
			if err != nil {
				return err
			}
			sale.AddItem(productID, item.Quantity, item.UnitPrice, item.Discount, item.Tax)
		}
	}

	return nil
}

// SaleListQuery filters sale queries.
type SaleListQuery struct {
	Status        string     `form:"status"`
	PaymentStatus string     `form:"paymentStatus"`
	LocationID    string     `form:"locationId"`
	CashierID     string     `form:"cashierId"`
	Search        string     `form:"search"`
	FromDate      *time.Time `form:"fromDate"`
	ToDate        *time.Time `form:"toDate"`
	PaginationRequest
}

// ToFilter converts query params to a domain filter.
func (q *SaleListQuery) ToFilter() possale.ListFilter {
	q.Defaults()
	f := possale.ListFilter{
		Status:        possale.Status(q.Status),
		PaymentStatus: possale.PaymentStatus(q.PaymentStatus),
		CashierID:     q.CashierID,
		Search:        q.Search,
		FromDate:      q.FromDate,
		ToDate:        q.ToDate,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if v, err := id.Parse(q.LocationID); err == nil && q.LocationID != "" {
		f.LocationID = &v
	}
	return f
}

// --- Response DTOs ---

// SaleResponse is a full sale with its lines.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	Date          time.Time          `json:"date"`
	LocationID    string             `json:"locationId"`
	TerminalID    string             `json:"terminalId,omitempty"`
	ClientID      *string            `json:"clientId,omitempty"`
	CashierID     string             `json:"cashierId"`
	PaymentMethod string             `json:"paymentMethod"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	Subtotal      types.Money        `json:"subtotal"`
	DiscountTotal types.Money        `json:"discountTotal"`
	TaxTotal      types.Money        `json:"taxTotal"`
	Total         types.Money        `json:"total"`
	Notes         string             `json:"notes,omitempty"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	Version       int                `json:"version"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// SaleItemResponse is one receipt line.
type SaleItemResponse struct {
	LineID    string         `json:"lineId"`
	LineNo    int            `json:"lineNo"`
	ProductID string         `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
	Discount  types.Money    `json:"discount"`
	Tax       types.Money    `json:"tax"`
	LineTotal types.Money    `json:"lineTotal"`
}

// FromPosSale converts a domain sale to its response DTO.
func FromPosSale(sale *possale.PosSale) *SaleResponse {
	resp := &SaleResponse{
		ID:            sale.ID.String(),
		Number:        sale.Number,
		Date:          sale.Date,
		LocationID:    sale.LocationID.String(),
		TerminalID:    sale.TerminalID,
		CashierID:     sale.CashierID,
		PaymentMethod: sale.PaymentMethod,
		Status:        string(sale.Status),
		PaymentStatus: string(sale.PaymentStatus),
		Subtotal:      sale.Subtotal,
		DiscountTotal: sale.DiscountTotal,
		TaxTotal:      sale.TaxTotal,
		Total:         sale.Total,
		Notes:         sale.Notes,
		Version:       sale.Version,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
	}
	if sale.ClientID != nil {
		s := sale.ClientID.String()
		resp.ClientID = &s
	}

	resp.Items = make([]SaleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		resp.Items[i] = SaleItemResponse{
			LineID:    item.LineID.String(),
			LineNo:    item.LineNo,
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
			LineTotal: item.LineTotal,
		}
	}

	return resp
}

// FromPosSales converts a slice of sales, without items.
func FromPosSales(sales []*possale.PosSale) []*SaleResponse {
	out := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		out[i] = FromPosSale(s)
	}
	return out
}
