package inventory

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/core/types"
	"posledger/pkg/logger"
)

// ReservedInput is one absolute reserved-quantity assignment.
type ReservedInput struct {
	ProductID  id.ID          `json:"productId"`
	LocationID id.ID          `json:"locationId"`
	Quantity   types.Quantity `json:"quantity"`
}

// ReservedAdjuster sets soft holds on stock. It only touches
// reserved_quantity; physical stock and the ledger stay untouched.
type ReservedAdjuster struct {
	repo      Repository
	txManager tx.Manager
}

// NewReservedAdjuster creates a new reserved-quantity adjuster.
func NewReservedAdjuster(repo Repository, txManager tx.Manager) *ReservedAdjuster {
	return &ReservedAdjuster{repo: repo, txManager: txManager}
}

// SetReservedQuantities sets reserved_quantity to the supplied absolute value
// for each pair, creating missing records as 0 on-hand. All inputs are
// validated before any write; the whole batch commits or rolls back together.
//
// Reserved may exceed on-hand quantity; the read side surfaces that as a
// negative available figure instead of rejecting.
func (a *ReservedAdjuster) SetReservedQuantities(ctx context.Context, companyID id.ID, items []ReservedInput) ([]*InventoryRecord, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("at least one reservation is required")
	}

	for i, item := range items {
		if id.IsNil(item.ProductID) {
			return nil, apperror.NewValidation(fmt.Sprintf("reservation %d: product is required", i))
		}
		if id.IsNil(item.LocationID) {
			return nil, apperror.NewValidation(fmt.Sprintf("reservation %d: location is required", i))
		}
		if item.Quantity.IsNegative() {
			return nil, apperror.NewValidation(fmt.Sprintf("reservation %d: quantity cannot be negative", i)).
				WithDetail("value", item.Quantity.String())
		}
	}

	results := make([]*InventoryRecord, 0, len(items))
	err := a.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, item := range items {
			rec, err := a.findOrCreateForUpdate(ctx, companyID, item.ProductID, item.LocationID)
			if err != nil {
				return err
			}

			rec.Reserved = item.Quantity
			rec.LastUpdated = time.Now().UTC()
			if err := a.repo.UpdateRecord(ctx, rec); err != nil {
				return fmt.Errorf("update reserved quantity: %w", err)
			}
			results = append(results, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "set reserved quantities", "count", len(results))
	return results, nil
}

// GetReservedQuantities returns snapshots matching the filter.
func (a *ReservedAdjuster) GetReservedQuantities(ctx context.Context, companyID id.ID, filter RecordFilter) ([]*InventoryRecord, error) {
	return a.repo.ListRecords(ctx, companyID, filter)
}

func (a *ReservedAdjuster) findOrCreateForUpdate(ctx context.Context, companyID, productID, locationID id.ID) (*InventoryRecord, error) {
	rec, err := a.repo.GetRecordForUpdate(ctx, companyID, productID, locationID)
	if err == nil {
		return rec, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("lock inventory record: %w", err)
	}

	rec = NewInventoryRecord(companyID, productID, locationID)
	if err := a.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create inventory record: %w", err)
	}
	return a.repo.GetRecordForUpdate(ctx, companyID, productID, locationID)
}
