package dto

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/domain/reports"
)

// Report responses reuse the domain report types directly; only the
// query-side requests need mapping.

// StockBalanceQuery filters the stock balance report.
type StockBalanceQuery struct {
	LocationIDs []string `form:"locationId"`
	ProductIDs  []string `form:"productId"`
	ExcludeZero *bool    `form:"excludeZero"`
	Limit       int      `form:"limit"`
	Offset      int      `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (q *StockBalanceQuery) ToFilter() reports.StockBalanceFilter {
	return reports.StockBalanceFilter{
		LocationIDs: parseIDs(q.LocationIDs),
		ProductIDs:  parseIDs(q.ProductIDs),
		ExcludeZero: q.ExcludeZero == nil || *q.ExcludeZero,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
}

// StockTurnoverQuery filters the stock turnover report.
type StockTurnoverQuery struct {
	FromDate    time.Time `form:"fromDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate      time.Time `form:"toDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	LocationIDs []string  `form:"locationId"`
	ProductIDs  []string  `form:"productId"`
	IncludeZero bool      `form:"includeZero"`
	Limit       int       `form:"limit"`
	Offset      int       `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (q *StockTurnoverQuery) ToFilter() reports.StockTurnoverFilter {
	return reports.StockTurnoverFilter{
		FromDate:    q.FromDate,
		ToDate:      q.ToDate,
		LocationIDs: parseIDs(q.LocationIDs),
		ProductIDs:  parseIDs(q.ProductIDs),
		IncludeZero: q.IncludeZero,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
}

// ReconciliationQuery filters the ledger reconciliation run.
type ReconciliationQuery struct {
	LocationIDs    []string `form:"locationId"`
	ProductIDs     []string `form:"productId"`
	OnlyMismatches bool     `form:"onlyMismatches"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (q *ReconciliationQuery) ToFilter() reports.ReconciliationFilter {
	return reports.ReconciliationFilter{
		LocationIDs:    parseIDs(q.LocationIDs),
		ProductIDs:     parseIDs(q.ProductIDs),
		OnlyMismatches: q.OnlyMismatches,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}
}

// SalesSummaryQuery filters the daily sales summary.
type SalesSummaryQuery struct {
	FromDate    time.Time `form:"fromDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ToDate      time.Time `form:"toDate" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	LocationIDs []string  `form:"locationId"`
	Limit       int       `form:"limit"`
	Offset      int       `form:"offset"`
}

// ToFilter converts query params to a domain filter.
func (q *SalesSummaryQuery) ToFilter() reports.SalesSummaryFilter {
	return reports.SalesSummaryFilter{
		FromDate:    q.FromDate,
		ToDate:      q.ToDate,
		LocationIDs: parseIDs(q.LocationIDs),
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
}

// parseIDs keeps only well-formed IDs.
func parseIDs(values []string) []id.ID {
	var out []id.ID
	for _, s := range values {
		if v, err := id.Parse(s); err == nil {
			out = append(out, v)
		}
	}
	return out
}
