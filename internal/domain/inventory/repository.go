package inventory

import (
	"context"
	"time"

	"posledger/internal/core/id"
)

// Repository defines persistence for inventory records and the movement ledger.
type Repository interface {
	// Record operations

	// GetRecord returns the snapshot for a pair, apperror.NotFound if absent.
	GetRecord(ctx context.Context, companyID, productID, locationID id.ID) (*InventoryRecord, error)

	// GetRecordForUpdate returns the snapshot with a row-level write lock.
	// Must be called inside a transaction.
	GetRecordForUpdate(ctx context.Context, companyID, productID, locationID id.ID) (*InventoryRecord, error)

	// CreateRecord inserts a new snapshot row.
	CreateRecord(ctx context.Context, rec *InventoryRecord) error

	// UpdateRecord persists quantity, reserved and last_updated.
	UpdateRecord(ctx context.Context, rec *InventoryRecord) error

	// ListRecords returns snapshots matching the filter.
	ListRecords(ctx context.Context, companyID id.ID, filter RecordFilter) ([]*InventoryRecord, error)

	// Ledger operations

	// CreateEntry appends one ledger row. Ledger rows are never updated.
	CreateEntry(ctx context.Context, entry *MovementEntry) error

	// ListEntries returns ledger rows matching the filter, newest first.
	ListEntries(ctx context.Context, companyID id.ID, filter MovementFilter) ([]*MovementEntry, error)
}

// RecordFilter narrows snapshot queries.
type RecordFilter struct {
	ProductIDs  []id.ID
	LocationID  *id.ID
	ReservedGT  bool // only rows with reserved_quantity > 0
	ExcludeZero bool // skip rows with zero on-hand and zero reserved
	Limit       int
	Offset      int
}

// MovementFilter narrows ledger queries.
type MovementFilter struct {
	ProductID     *id.ID
	LocationID    *id.ID
	MovementType  *MovementType
	ReferenceType *ReferenceType
	ReferenceID   *id.ID
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}
