// Package sale_repo provides the PostgreSQL implementation of POS sale
// persistence. Items are always replaced as a full set; the orchestrator
// owns the transaction.
package sale_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain"
	"posledger/internal/domain/possale"
	"posledger/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_pos_sales"
	saleItemsTable = "doc_pos_sale_items"
)

var itemCols = []string{
	"line_id", "sale_id", "line_no", "product_id",
	"quantity", "unit_price", "discount", "tax", "line_total",
}

// PosSaleRepo implements possale.Repository.
type PosSaleRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewPosSaleRepo creates a new POS sale repository.
func NewPosSaleRepo(txManager *postgres.TxManager) *PosSaleRepo {
	return &PosSaleRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[possale.PosSale](),
	}
}

func (r *PosSaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PosSaleRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts the sale header.
func (r *PosSaleRepo) Create(ctx context.Context, sale *possale.PosSale) error {
	data := postgres.StructToMap(sale)

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder().
		Insert(salesTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		// 23505 on (company_id, number): a concurrent sale won the same
		// invoice number, which the atomic sequence should prevent
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("invoice number already exists").
				WithDetail("number", sale.Number).
				WithCause(err)
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

// Update modifies the sale header with optimistic locking.
func (r *PosSaleRepo) Update(ctx context.Context, sale *possale.PosSale) error {
	data := postgres.StructToMap(sale)

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "company_id" || col == "number" {
			continue
		}
		if col == "version" || col == "created_at" || col == "created_by" || col == "updated_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder().
		Update(salesTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": sale.ID}).
		Where(squirrel.Eq{"version": sale.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("pos sale", sale.ID.String())
	}

	return nil
}

// Delete removes the sale and its items.
func (r *PosSaleRepo) Delete(ctx context.Context, companyID, saleID id.ID) error {
	querier := r.querier(ctx)

	if _, err := querier.Exec(ctx,
		"DELETE FROM "+saleItemsTable+" WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}

	result, err := querier.Exec(ctx,
		"DELETE FROM "+salesTable+" WHERE company_id = $1 AND id = $2", companyID, saleID)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("pos sale", saleID.String())
	}

	return nil
}

// GetByID retrieves the sale header.
func (r *PosSaleRepo) GetByID(ctx context.Context, companyID, saleID id.ID) (*possale.PosSale, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(salesTable).
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	return r.getOne(ctx, q, saleID.String())
}

// GetByNumber retrieves the sale header by invoice number.
func (r *PosSaleRepo) GetByNumber(ctx context.Context, companyID id.ID, number string) (*possale.PosSale, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(salesTable).
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"number": number}).
		Limit(1)

	return r.getOne(ctx, q, number)
}

func (r *PosSaleRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*possale.PosSale, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale possale.PosSale
	if err := pgxscan.Get(ctx, r.querier(ctx), &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pos sale", key)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &sale, nil
}

// List retrieves sale headers with filtering and pagination.
func (r *PosSaleRepo) List(ctx context.Context, companyID id.ID, filter possale.ListFilter) (domain.ListResult[*possale.PosSale], error) {
	result := domain.ListResult[*possale.PosSale]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.selectCols...).
		From(salesTable).
		Where(squirrel.Eq{"company_id": companyID})

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.PaymentStatus != "" {
		q = q.Where(squirrel.Eq{"payment_status": filter.PaymentStatus})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.CashierID != "" {
		q = q.Where(squirrel.Eq{"cashier_id": filter.CashierID})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list sales: %w", err)
	}

	return result, nil
}

// GetItems retrieves the line items in line order.
func (r *PosSaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]possale.PosSaleItem, error) {
	q := r.builder().
		Select(
			"line_id", "line_no", "product_id",
			"quantity", "unit_price", "discount", "tax", "line_total",
		).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []possale.PosSaleItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// SaveItems replaces the full item set for the sale.
func (r *PosSaleRepo) SaveItems(ctx context.Context, saleID id.ID, items []possale.PosSaleItem) error {
	querier := r.querier(ctx)

	if _, err := querier.Exec(ctx,
		"DELETE FROM "+saleItemsTable+" WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.LineID, saleID, item.LineNo, item.ProductID,
				item.Quantity, item.UnitPrice, item.Discount, item.Tax, item.LineTotal,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, saleItemsTable, itemCols, rows); err != nil {
			return fmt.Errorf("copy items: %w", err)
		}
		return nil
	}

	q := r.builder().Insert(saleItemsTable).Columns(itemCols...)
	for _, item := range items {
		q = q.Values(
			item.LineID, saleID, item.LineNo, item.ProductID,
			item.Quantity, item.UnitPrice, item.Discount, item.Tax, item.LineTotal,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ possale.Repository = (*PosSaleRepo)(nil)
