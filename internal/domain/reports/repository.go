package reports

import (
	"context"

	"posledger/internal/core/id"
)

// Repository defines report data access. All queries are company-scoped
// and read-only.
type Repository interface {
	GetStockBalance(ctx context.Context, companyID id.ID, filter StockBalanceFilter) (*StockBalanceReport, error)
	GetStockTurnover(ctx context.Context, companyID id.ID, filter StockTurnoverFilter) (*StockTurnoverReport, error)
	GetReconciliation(ctx context.Context, companyID id.ID, filter ReconciliationFilter) (*ReconciliationReport, error)
	GetSalesSummary(ctx context.Context, companyID id.ID, filter SalesSummaryFilter) (*SalesSummaryReport, error)
}
