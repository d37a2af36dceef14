package dto

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/inventory"
)

// --- Stock Movements ---

// CreateMovementRequest creates one direct stock movement.
type CreateMovementRequest struct {
	ProductID     string         `json:"productId" binding:"required"`
	LocationID    string         `json:"locationId" binding:"required"`
	Quantity      types.Quantity `json:"quantity" binding:"required"`
	MovementType  string         `json:"movementType" binding:"required"`
	ReferenceType string         `json:"referenceType" binding:"required"`
	ReferenceID   *string        `json:"referenceId,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// ToMovement converts the request to a domain movement input.
func (r *CreateMovementRequest) ToMovement(companyID id.ID, createdBy string) (inventory.Movement, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return inventory.Movement{}, err
	}
	locationID, err := id.Parse(r.LocationID)
	if err != nil {
		return inventory.Movement{}, err
	}

	mv := inventory.Movement{
		CompanyID:     companyID,
		ProductID:     productID,
		LocationID:    locationID,
		Quantity:      r.Quantity,
		MovementType:  inventory.MovementType(r.MovementType),
		ReferenceType: inventory.ReferenceType(r.ReferenceType),
		Notes:         r.Notes,
	}
	if r.ReferenceID != nil {
		refID, err := id.Parse(*r.ReferenceID)
		if err != nil {
			return inventory.Movement{}, err
		}
		mv.ReferenceID = &refID
	}
	if createdBy != "" {
		mv.CreatedBy = &createdBy
	}
	return mv, nil
}

// MovementListQuery filters ledger queries.
type MovementListQuery struct {
	ProductID     string     `form:"productId"`
	LocationID    string     `form:"locationId"`
	MovementType  string     `form:"movementType"`
	ReferenceType string     `form:"referenceType"`
	ReferenceID   string     `form:"referenceId"`
	FromDate      *time.Time `form:"fromDate"`
	ToDate        *time.Time `form:"toDate"`
	PaginationRequest
}

// ToFilter converts query params to a domain filter.
func (q *MovementListQuery) ToFilter() inventory.MovementFilter {
	q.Defaults()
	f := inventory.MovementFilter{
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if v, err := id.Parse(q.ProductID); err == nil && q.ProductID != "" {
		f.ProductID = &v
	}
	if v, err := id.Parse(q.LocationID); err == nil && q.LocationID != "" {
		f.LocationID = &v
	}
	if v, err := id.Parse(q.ReferenceID); err == nil && q.ReferenceID != "" {
		f.ReferenceID = &v
	}
	if q.MovementType != "" {
		mt := inventory.MovementType(q.MovementType)
		f.MovementType = &mt
	}
	if q.ReferenceType != "" {
		rt := inventory.ReferenceType(q.ReferenceType)
		f.ReferenceType = &rt
	}
	return f
}

// MovementResponse is one ledger row.
type MovementResponse struct {
	ID            string         `json:"id"`
	ProductID     string         `json:"productId"`
	LocationID    string         `json:"locationId"`
	Quantity      types.Quantity `json:"quantity"`
	MovementType  string         `json:"movementType"`
	ReferenceType string         `json:"referenceType"`
	ReferenceID   *string        `json:"referenceId,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedBy     *string        `json:"createdBy,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// FromMovementEntry converts a ledger row to its response DTO.
func FromMovementEntry(e *inventory.MovementEntry) MovementResponse {
	resp := MovementResponse{
		ID:            e.ID.String(),
		ProductID:     e.ProductID.String(),
		LocationID:    e.LocationID.String(),
		Quantity:      e.Quantity,
		MovementType:  string(e.MovementType),
		ReferenceType: string(e.ReferenceType),
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
	if e.ReferenceID != nil {
		s := e.ReferenceID.String()
		resp.ReferenceID = &s
	}
	return resp
}

// FromMovementEntries converts a slice of ledger rows.
func FromMovementEntries(entries []*inventory.MovementEntry) []MovementResponse {
	out := make([]MovementResponse, len(entries))
	for i, e := range entries {
		out[i] = FromMovementEntry(e)
	}
	return out
}

// --- Inventory Records ---

// RecordListQuery filters snapshot queries.
type RecordListQuery struct {
	ProductIDs  []string `form:"productId"`
	LocationID  string   `form:"locationId"`
	ReservedGT  bool     `form:"reservedOnly"`
	ExcludeZero bool     `form:"excludeZero"`
	PaginationRequest
}

// ToFilter converts query params to a domain filter.
func (q *RecordListQuery) ToFilter() inventory.RecordFilter {
	q.Defaults()
	f := inventory.RecordFilter{
		ReservedGT:  q.ReservedGT,
		ExcludeZero: q.ExcludeZero,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	for _, s := range q.ProductIDs {
		if v, err := id.Parse(s); err == nil {
			f.ProductIDs = append(f.ProductIDs, v)
		}
	}
	if v, err := id.Parse(q.LocationID); err == nil && q.LocationID != "" {
		f.LocationID = &v
	}
	return f
}

// RecordResponse is one (product, location) stock snapshot.
type RecordResponse struct {
	ID          string         `json:"id"`
	ProductID   string         `json:"productId"`
	LocationID  string         `json:"locationId"`
	Quantity    types.Quantity `json:"quantity"`
	Reserved    types.Quantity `json:"reservedQuantity"`
	Available   types.Quantity `json:"available"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// FromRecord converts a snapshot to its response DTO.
func FromRecord(r *inventory.InventoryRecord) RecordResponse {
	return RecordResponse{
		ID:          r.ID.String(),
		ProductID:   r.ProductID.String(),
		LocationID:  r.LocationID.String(),
		Quantity:    r.Quantity,
		Reserved:    r.Reserved,
		Available:   r.Available(),
		LastUpdated: r.LastUpdated,
	}
}

// FromRecords converts a slice of snapshots.
func FromRecords(records []*inventory.InventoryRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}

// QuantityResponse is the on-hand amount for one pair.
type QuantityResponse struct {
	ProductID  string         `json:"productId"`
	LocationID string         `json:"locationId"`
	Quantity   types.Quantity `json:"quantity"`
}

// --- Reserved Quantities ---

// SetReservedRequest replaces reserved amounts for a batch of pairs.
type SetReservedRequest struct {
	Items []ReservedItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReservedItemRequest is one pair to update.
type ReservedItemRequest struct {
	ProductID  string         `json:"productId" binding:"required"`
	LocationID string         `json:"locationId" binding:"required"`
	Quantity   types.Quantity `json:"quantity"`
}

// ToInputs converts the request to domain inputs.
func (r *SetReservedRequest) ToInputs() ([]inventory.ReservedInput, error) {
	inputs := make([]inventory.ReservedInput, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		locationID, err := id.Parse(item.LocationID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, inventory.ReservedInput{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   item.Quantity,
		})
	}
	return inputs, nil
}
