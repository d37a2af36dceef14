// Package inventory_repo provides the PostgreSQL implementation of the
// inventory snapshot and movement ledger storage.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/inventory"
	"posledger/internal/infrastructure/storage/postgres"
)

const (
	inventoryTable = "inventory"
	movementsTable = "stock_movements"
)

var recordCols = []string{
	"id", "company_id", "product_id", "location_id",
	"quantity", "reserved_quantity", "last_updated", "created_at",
}

var entryCols = []string{
	"id", "company_id", "product_id", "location_id",
	"quantity", "movement_type", "reference_type", "reference_id",
	"notes", "created_by", "created_at",
}

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *InventoryRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// GetRecord returns the snapshot for a pair.
func (r *InventoryRepo) GetRecord(ctx context.Context, companyID, productID, locationID id.ID) (*inventory.InventoryRecord, error) {
	q := r.builder.Select(recordCols...).
		From(inventoryTable).
		Where(squirrel.Eq{
			"company_id":  companyID,
			"product_id":  productID,
			"location_id": locationID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec inventory.InventoryRecord
	if err := pgxscan.Get(ctx, r.querier(ctx), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory record",
				fmt.Sprintf("%s@%s", productID, locationID))
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	return &rec, nil
}

// GetRecordForUpdate returns the snapshot with a row-level write lock.
// Every writer goes through this, so concurrent mutations of the same pair
// serialize on the row regardless of which path (sale or adjustment) takes it.
func (r *InventoryRepo) GetRecordForUpdate(ctx context.Context, companyID, productID, locationID id.ID) (*inventory.InventoryRecord, error) {
	sql := `
		SELECT id, company_id, product_id, location_id,
		       quantity, reserved_quantity, last_updated, created_at
		FROM inventory
		WHERE company_id = $1 AND product_id = $2 AND location_id = $3
		FOR UPDATE
	`

	var rec inventory.InventoryRecord
	if err := pgxscan.Get(ctx, r.querier(ctx), &rec, sql, companyID, productID, locationID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory record",
				fmt.Sprintf("%s@%s", productID, locationID))
		}
		return nil, fmt.Errorf("get record for update: %w", err)
	}

	return &rec, nil
}

// CreateRecord inserts a new snapshot row. A concurrent insert of the same
// pair is tolerated; the caller re-reads under lock afterwards.
func (r *InventoryRepo) CreateRecord(ctx context.Context, rec *inventory.InventoryRecord) error {
	q := r.builder.Insert(inventoryTable).
		Columns(recordCols...).
		Values(
			rec.ID, rec.CompanyID, rec.ProductID, rec.LocationID,
			rec.Quantity, rec.Reserved, rec.LastUpdated, rec.CreatedAt,
		).
		Suffix("ON CONFLICT (company_id, product_id, location_id) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// UpdateRecord persists quantity, reserved and last_updated.
func (r *InventoryRepo) UpdateRecord(ctx context.Context, rec *inventory.InventoryRecord) error {
	q := r.builder.Update(inventoryTable).
		Set("quantity", rec.Quantity).
		Set("reserved_quantity", rec.Reserved).
		Set("last_updated", rec.LastUpdated).
		Where(squirrel.Eq{"id": rec.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory record", rec.ID.String())
	}
	return nil
}

// ListRecords returns snapshots matching the filter.
func (r *InventoryRepo) ListRecords(ctx context.Context, companyID id.ID, filter inventory.RecordFilter) ([]*inventory.InventoryRecord, error) {
	q := r.builder.Select(recordCols...).
		From(inventoryTable).
		Where(squirrel.Eq{"company_id": companyID})

	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.ReservedGT {
		q = q.Where(squirrel.Gt{"reserved_quantity": int64(0)})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.Or{
			squirrel.NotEq{"quantity": int64(0)},
			squirrel.NotEq{"reserved_quantity": int64(0)},
		})
	}

	q = q.OrderBy("product_id", "location_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*inventory.InventoryRecord
	if err := pgxscan.Select(ctx, r.querier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// CreateEntry appends one ledger row.
func (r *InventoryRepo) CreateEntry(ctx context.Context, entry *inventory.MovementEntry) error {
	q := r.builder.Insert(movementsTable).
		Columns(entryCols...).
		Values(
			entry.ID, entry.CompanyID, entry.ProductID, entry.LocationID,
			entry.Quantity, entry.MovementType, entry.ReferenceType, entry.ReferenceID,
			entry.Notes, entry.CreatedBy, entry.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement entry: %w", err)
	}
	return nil
}

// ListEntries returns ledger rows matching the filter, newest first.
func (r *InventoryRepo) ListEntries(ctx context.Context, companyID id.ID, filter inventory.MovementFilter) ([]*inventory.MovementEntry, error) {
	q := r.builder.Select(entryCols...).
		From(movementsTable).
		Where(squirrel.Eq{"company_id": companyID})

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.MovementType != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.MovementType})
	}
	if filter.ReferenceType != nil {
		q = q.Where(squirrel.Eq{"reference_type": *filter.ReferenceType})
	}
	if filter.ReferenceID != nil {
		q = q.Where(squirrel.Eq{"reference_id": *filter.ReferenceID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*inventory.MovementEntry
	if err := pgxscan.Select(ctx, r.querier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Ensure interface compliance.
var _ inventory.Repository = (*InventoryRepo)(nil)
