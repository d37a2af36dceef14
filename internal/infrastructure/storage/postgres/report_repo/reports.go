// Package report_repo provides PostgreSQL implementations for report
// repositories. Reports read the snapshot, the ledger and the sale tables;
// they never write.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/reports"
	"posledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// GetStockBalance reads the current snapshot joined with catalog names.
func (r *ReportRepo) GetStockBalance(ctx context.Context, companyID id.ID, filter reports.StockBalanceFilter) (*reports.StockBalanceReport, error) {
	q := r.builder.Select(
		"i.location_id",
		"l.name AS location_name",
		"i.product_id",
		"p.name AS product_name",
		"p.sku AS product_sku",
		"p.unit",
		"i.quantity",
		"i.reserved_quantity AS reserved",
		"(i.quantity - i.reserved_quantity) AS available",
	).
		From("inventory i").
		Join("cat_locations l ON i.location_id = l.id").
		Join("cat_products p ON i.product_id = p.id").
		Where(squirrel.Eq{"i.company_id": companyID})

	if len(filter.LocationIDs) > 0 {
		q = q.Where(squirrel.Eq{"i.location_id": filter.LocationIDs})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"i.product_id": filter.ProductIDs})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.Or{
			squirrel.NotEq{"i.quantity": int64(0)},
			squirrel.NotEq{"i.reserved_quantity": int64(0)},
		})
	}

	q = q.OrderBy("l.name", "p.name")

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

	var items []reports.StockBalanceItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("stock balance report: %w", err)
	}

	report := &reports.StockBalanceReport{
		AsOfDate:   time.Now().UTC(),
		Items:      items,
		TotalItems: len(items),
	}
	for _, item := range items {
		report.TotalQuantity = report.TotalQuantity.Add(item.Quantity)
		report.TotalReserved = report.TotalReserved.Add(item.Reserved)
	}

	return report, nil
}

// GetStockTurnover replays the ledger per pair: opening is the signed sum
// before the period, receipt and expense are the period's IN and OUT sums.
func (r *ReportRepo) GetStockTurnover(ctx context.Context, companyID id.ID, filter reports.StockTurnoverFilter) (*reports.StockTurnoverReport, error) {
	sqlQ := `
		SELECT m.location_id,
		       l.name AS location_name,
		       m.product_id,
		       p.name AS product_name,
		       p.sku  AS product_sku,
		       COALESCE(SUM(CASE WHEN m.created_at < $2
		           THEN (CASE WHEN m.movement_type = 'IN' THEN m.quantity ELSE -m.quantity END)
		           ELSE 0 END), 0) AS opening_balance,
		       COALESCE(SUM(CASE WHEN m.created_at >= $2 AND m.movement_type = 'IN'
		           THEN m.quantity ELSE 0 END), 0) AS receipt,
		       COALESCE(SUM(CASE WHEN m.created_at >= $2 AND m.movement_type = 'OUT'
		           THEN m.quantity ELSE 0 END), 0) AS expense
		FROM stock_movements m
		JOIN cat_locations l ON m.location_id = l.id
		JOIN cat_products p ON m.product_id = p.id
		WHERE m.company_id = $1 AND m.created_at <= $3
		GROUP BY m.location_id, l.name, m.product_id, p.name, p.sku
		ORDER BY l.name, p.name
	`
	args := []any{companyID, filter.FromDate, filter.ToDate}

	var rows []struct {
		LocationID     id.ID          `db:"location_id"`
		LocationName   string         `db:"location_name"`
		ProductID      id.ID          `db:"product_id"`
		ProductName    string         `db:"product_name"`
		ProductSKU     string         `db:"product_sku"`
		OpeningBalance types.Quantity `db:"opening_balance"`
		Receipt        types.Quantity `db:"receipt"`
		Expense        types.Quantity `db:"expense"`
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sqlQ, args...); err != nil {
		return nil, fmt.Errorf("stock turnover report: %w", err)
	}

	report := &reports.StockTurnoverReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	for _, row := range rows {
		if !matchesTurnoverFilter(row.LocationID, row.ProductID, filter) {
			continue
		}
		item := reports.StockTurnoverItem{
			LocationID:     row.LocationID,
			LocationName:   row.LocationName,
			ProductID:      row.ProductID,
			ProductName:    row.ProductName,
			ProductSKU:     row.ProductSKU,
			OpeningBalance: row.OpeningBalance,
			Receipt:        row.Receipt,
			Expense:        row.Expense,
		}
		item.ClosingBalance = item.OpeningBalance.Add(item.Receipt).Sub(item.Expense)

		if !filter.IncludeZero && item.Receipt.IsZero() && item.Expense.IsZero() {
			continue
		}

		report.Items = append(report.Items, item)
		report.TotalOpening = report.TotalOpening.Add(item.OpeningBalance)
		report.TotalReceipt = report.TotalReceipt.Add(item.Receipt)
		report.TotalExpense = report.TotalExpense.Add(item.Expense)
		report.TotalClosing = report.TotalClosing.Add(item.ClosingBalance)
	}
	report.TotalItems = len(report.Items)

	applyPaging(&report.Items, filter.Limit, filter.Offset)

	return report, nil
}

func matchesTurnoverFilter(locationID, productID id.ID, filter reports.StockTurnoverFilter) bool {
	if len(filter.LocationIDs) > 0 && !containsID(filter.LocationIDs, locationID) {
		return false
	}
	if len(filter.ProductIDs) > 0 && !containsID(filter.ProductIDs, productID) {
		return false
	}
	return true
}

// GetReconciliation compares every snapshot row against the signed sum of
// its ledger entries. A FULL JOIN also surfaces ledger pairs that have no
// snapshot row and snapshot rows that have no ledger history.
func (r *ReportRepo) GetReconciliation(ctx context.Context, companyID id.ID, filter reports.ReconciliationFilter) (*reports.ReconciliationReport, error) {
	sqlQ := `
		WITH ledger AS (
			SELECT product_id, location_id,
			       SUM(CASE WHEN movement_type = 'IN' THEN quantity ELSE -quantity END) AS ledger_quantity
			FROM stock_movements
			WHERE company_id = $1
			GROUP BY product_id, location_id
		),
		snapshot AS (
			SELECT product_id, location_id, quantity
			FROM inventory
			WHERE company_id = $1
		)
		SELECT COALESCE(s.product_id, l.product_id)   AS product_id,
		       COALESCE(s.location_id, l.location_id) AS location_id,
		       COALESCE(s.quantity, 0)                AS snapshot_quantity,
		       COALESCE(l.ledger_quantity, 0)         AS ledger_quantity
		FROM snapshot s
		FULL OUTER JOIN ledger l
		  ON s.product_id = l.product_id AND s.location_id = l.location_id
		ORDER BY 1, 2
	`

	var rows []struct {
		ProductID        id.ID          `db:"product_id"`
		LocationID       id.ID          `db:"location_id"`
		SnapshotQuantity types.Quantity `db:"snapshot_quantity"`
		LedgerQuantity   types.Quantity `db:"ledger_quantity"`
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sqlQ, companyID); err != nil {
		return nil, fmt.Errorf("reconciliation report: %w", err)
	}

	report := &reports.ReconciliationReport{RunAt: time.Now().UTC()}
	for _, row := range rows {
		if len(filter.LocationIDs) > 0 && !containsID(filter.LocationIDs, row.LocationID) {
			continue
		}
		if len(filter.ProductIDs) > 0 && !containsID(filter.ProductIDs, row.ProductID) {
			continue
		}

		item := reports.ReconciliationItem{
			ProductID:        row.ProductID,
			LocationID:       row.LocationID,
			SnapshotQuantity: row.SnapshotQuantity,
			LedgerQuantity:   row.LedgerQuantity,
			Difference:       row.SnapshotQuantity.Sub(row.LedgerQuantity),
		}
		item.Consistent = item.Difference.IsZero()

		report.TotalPairs++
		if !item.Consistent {
			report.Mismatches++
		}
		if filter.OnlyMismatches && item.Consistent {
			continue
		}
		report.Items = append(report.Items, item)
	}

	applyPaging(&report.Items, filter.Limit, filter.Offset)

	return report, nil
}

// GetSalesSummary aggregates completed sales per location and day.
func (r *ReportRepo) GetSalesSummary(ctx context.Context, companyID id.ID, filter reports.SalesSummaryFilter) (*reports.SalesSummaryReport, error) {
	sqlQ := `
		SELECT date_trunc('day', s.date)  AS day,
		       s.location_id,
		       l.name                     AS location_name,
		       COUNT(*)                   AS sale_count,
		       COALESCE(SUM(it.cnt), 0)   AS item_count,
		       COALESCE(SUM(s.total), 0)          AS gross_total,
		       COALESCE(SUM(s.discount_total), 0) AS discount_sum,
		       COALESCE(SUM(s.tax_total), 0)      AS tax_sum
		FROM doc_pos_sales s
		JOIN cat_locations l ON s.location_id = l.id
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS cnt FROM doc_pos_sale_items i WHERE i.sale_id = s.id
		) it ON true
		WHERE s.company_id = $1
		  AND s.status = 'COMPLETED'
		  AND s.date >= $2 AND s.date <= $3
	`
	args := []any{companyID, filter.FromDate, filter.ToDate}
	argIndex := 4

	if len(filter.LocationIDs) > 0 {
		sqlQ += fmt.Sprintf(" AND s.location_id = ANY($%d)", argIndex)
		args = append(args, filter.LocationIDs)
		argIndex++
	}

	sqlQ += `
		GROUP BY day, s.location_id, l.name
		ORDER BY day DESC, l.name
	`
	if filter.Limit > 0 {
		sqlQ += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		sqlQ += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	var items []reports.SalesSummaryItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sqlQ, args...); err != nil {
		return nil, fmt.Errorf("sales summary report: %w", err)
	}

	return &reports.SalesSummaryReport{
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		Items:      items,
		TotalItems: len(items),
	}, nil
}

func containsID(ids []id.ID, target id.ID) bool {
	for _, v := range ids {
		if v == target {
			return true
		}
	}
	return false
}

func applyPaging[T any](items *[]T, limit, offset int) {
	if offset > 0 {
		if offset >= len(*items) {
			*items = nil
			return
		}
		*items = (*items)[offset:]
	}
	if limit > 0 && len(*items) > limit {
		*items = (*items)[:limit]
	}
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
