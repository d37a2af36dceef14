package reports

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/pkg/logger"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStockBalance returns the current snapshot with derived availability.
func (s *Service) GetStockBalance(ctx context.Context, companyID id.ID, filter StockBalanceFilter) (*StockBalanceReport, error) {
	clampLimit(&filter.Limit, 100, 1000)

	report, err := s.repo.GetStockBalance(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock balance report: %w", err)
	}
	return report, nil
}

// GetStockTurnover returns per-pair opening/receipt/expense/closing for a
// period, replayed from the ledger.
func (s *Service) GetStockTurnover(ctx context.Context, companyID id.ID, filter StockTurnoverFilter) (*StockTurnoverReport, error) {
	if err := validatePeriod(filter.FromDate, filter.ToDate); err != nil {
		return nil, err
	}
	clampLimit(&filter.Limit, 100, 1000)

	report, err := s.repo.GetStockTurnover(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock turnover report: %w", err)
	}
	return report, nil
}

// GetReconciliation replays the ledger for every selected pair and compares
// the signed sum against the snapshot quantity. Mismatches indicate writes
// that bypassed the mutator and are logged for follow-up.
func (s *Service) GetReconciliation(ctx context.Context, companyID id.ID, filter ReconciliationFilter) (*ReconciliationReport, error) {
	clampLimit(&filter.Limit, 500, 5000)

	report, err := s.repo.GetReconciliation(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("get reconciliation report: %w", err)
	}

	if report.Mismatches > 0 {
		logger.Warn(ctx, "ledger reconciliation found mismatches",
			"company", companyID,
			"pairs", report.TotalPairs,
			"mismatches", report.Mismatches)
	}
	return report, nil
}

// GetSalesSummary aggregates completed sales per location and day.
func (s *Service) GetSalesSummary(ctx context.Context, companyID id.ID, filter SalesSummaryFilter) (*SalesSummaryReport, error) {
	if err := validatePeriod(filter.FromDate, filter.ToDate); err != nil {
		return nil, err
	}
	clampLimit(&filter.Limit, 100, 1000)

	report, err := s.repo.GetSalesSummary(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("get sales summary report: %w", err)
	}
	return report, nil
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewValidation("fromDate and toDate are required").
			WithDetail("field", "fromDate")
	}
	if from.After(to) {
		return apperror.NewValidation("fromDate must be before toDate").
			WithDetail("fromDate", from).
			WithDetail("toDate", to)
	}
	return nil
}

func clampLimit(limit *int, def, max int) {
	if *limit <= 0 {
		*limit = def
	}
	if *limit > max {
		*limit = max
	}
}
