package inventory

import (
	"context"
	"fmt"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/tx"
	"posledger/internal/core/types"
	"posledger/pkg/logger"
)

// Service is the public entry point for direct, single-item stock changes:
// manual adjustments, transfers, opening stock and purchase receipts.
type Service struct {
	repo      Repository
	mutator   *Mutator
	txManager tx.Manager
}

// NewService creates a new stock movement service.
func NewService(repo Repository, mutator *Mutator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		mutator:   mutator,
		txManager: txManager,
	}
}

// CreateMovement validates the input and applies it in a new transaction.
func (s *Service) CreateMovement(ctx context.Context, mv Movement) (*MovementEntry, error) {
	if err := mv.Validate(); err != nil {
		return nil, err
	}

	mv.ReferenceType = NormalizeReferenceType(mv.ReferenceType)

	if !mv.ReferenceType.IsDirectlyCreatable() {
		return nil, apperror.NewValidation("reference type not allowed for direct movements").
			WithDetail("field", "referenceType").
			WithDetail("value", string(mv.ReferenceType))
	}

	// OPENING_STOCK and ORDER_PURCHASE only add stock, reject before any write
	if !ValidCombination(mv.ReferenceType, mv.MovementType) {
		return nil, apperror.NewInvalidReferenceType(string(mv.ReferenceType), string(mv.MovementType))
	}

	var entry *MovementEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, e, err := s.mutator.ApplyMovement(ctx, mv)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "created stock movement",
		"movement_id", entry.ID,
		"product_id", mv.ProductID,
		"location_id", mv.LocationID,
		"movement_type", mv.MovementType,
		"reference_type", mv.ReferenceType,
	)

	return entry, nil
}

// GetQuantity returns the current on-hand quantity for a pair.
// A pair without a record reads as zero.
func (s *Service) GetQuantity(ctx context.Context, companyID, productID, locationID id.ID) (types.Quantity, error) {
	rec, err := s.repo.GetRecord(ctx, companyID, productID, locationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get inventory record: %w", err)
	}
	return rec.Quantity, nil
}

// GetRecord returns the full snapshot for a pair.
func (s *Service) GetRecord(ctx context.Context, companyID, productID, locationID id.ID) (*InventoryRecord, error) {
	rec, err := s.repo.GetRecord(ctx, companyID, productID, locationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("inventory record", productID.String())
		}
		return nil, err
	}
	return rec, nil
}

// ListRecords returns inventory snapshots matching the filter.
func (s *Service) ListRecords(ctx context.Context, companyID id.ID, filter RecordFilter) ([]*InventoryRecord, error) {
	return s.repo.ListRecords(ctx, companyID, filter)
}

// ListMovements returns ledger rows matching the filter.
func (s *Service) ListMovements(ctx context.Context, companyID id.ID, filter MovementFilter) ([]*MovementEntry, error) {
	return s.repo.ListEntries(ctx, companyID, filter)
}
