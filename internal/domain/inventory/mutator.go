package inventory

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/pkg/logger"
)

// Mutator is the only component allowed to write the inventory snapshot.
// It applies one movement at a time: lock, check, update the record and
// append exactly one ledger row. The caller owns the transaction; both
// writes commit or roll back together.
type Mutator struct {
	repo Repository
}

// NewMutator creates a new inventory mutator.
func NewMutator(repo Repository) *Mutator {
	return &Mutator{repo: repo}
}

// ApplyMovement executes one stock mutation inside the caller's transaction.
// The movement's reference type must already be normalized.
func (m *Mutator) ApplyMovement(ctx context.Context, mv Movement) (*InventoryRecord, *MovementEntry, error) {
	if err := mv.Validate(); err != nil {
		return nil, nil, err
	}

	if !ValidCombination(mv.ReferenceType, mv.MovementType) {
		return nil, nil, apperror.NewInvalidReferenceType(string(mv.ReferenceType), string(mv.MovementType))
	}

	rec, err := m.lockOrCreateRecord(ctx, mv)
	if err != nil {
		return nil, nil, err
	}

	switch mv.MovementType {
	case MovementIn:
		rec.Quantity = rec.Quantity.Add(mv.Quantity)
	case MovementOut:
		if mv.Quantity > rec.Quantity {
			return nil, nil, apperror.NewInsufficientStock(
				mv.ProductID.String(),
				mv.Quantity.String(),
				rec.Quantity.String(),
			)
		}
		rec.Quantity = rec.Quantity.Sub(mv.Quantity)
	}

	rec.LastUpdated = time.Now().UTC()
	if err := m.repo.UpdateRecord(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("update inventory record: %w", err)
	}

	entry := &MovementEntry{
		ID:            id.New(),
		CompanyID:     mv.CompanyID,
		ProductID:     mv.ProductID,
		LocationID:    mv.LocationID,
		Quantity:      mv.Quantity,
		MovementType:  mv.MovementType,
		ReferenceType: mv.ReferenceType,
		ReferenceID:   mv.ReferenceID,
		Notes:         mv.Notes,
		CreatedBy:     mv.CreatedBy,
		CreatedAt:     rec.LastUpdated,
	}
	if err := m.repo.CreateEntry(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("append ledger entry: %w", err)
	}

	logger.Debug(ctx, "applied stock movement",
		"product_id", mv.ProductID,
		"location_id", mv.LocationID,
		"movement_type", mv.MovementType,
		"reference_type", mv.ReferenceType,
		"quantity", mv.Quantity.String(),
		"new_quantity", rec.Quantity.String(),
	)

	return rec, entry, nil
}

// lockOrCreateRecord locks the snapshot row for the pair. The lock is taken
// uniformly for IN and OUT so direct adjustments and sales serialize the
// same way. A missing record is created as 0/0 for IN movements and is an
// error for OUT movements.
func (m *Mutator) lockOrCreateRecord(ctx context.Context, mv Movement) (*InventoryRecord, error) {
	rec, err := m.repo.GetRecordForUpdate(ctx, mv.CompanyID, mv.ProductID, mv.LocationID)
	if err == nil {
		return rec, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("lock inventory record: %w", err)
	}

	if mv.MovementType == MovementOut {
		return nil, apperror.NewNoInventoryRecord(mv.ProductID.String(), mv.LocationID.String())
	}

	rec = NewInventoryRecord(mv.CompanyID, mv.ProductID, mv.LocationID)
	if err := m.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create inventory record: %w", err)
	}

	// Re-read under lock: a concurrent IN for the same new pair could have
	// won the insert race, the unique constraint plus this lock serialize us.
	return m.repo.GetRecordForUpdate(ctx, mv.CompanyID, mv.ProductID, mv.LocationID)
}
