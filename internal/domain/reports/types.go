// Package reports provides read-only reporting over the inventory
// snapshot and the movement ledger.
package reports

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// --- Stock Balance Report ---

// StockBalanceFilter defines the filter for the stock balance report.
type StockBalanceFilter struct {
	LocationIDs []id.ID
	ProductIDs  []id.ID

	// Exclude rows where both quantity and reserved are zero
	ExcludeZero bool

	Limit  int
	Offset int
}

// StockBalanceItem is a single row of the balance report.
type StockBalanceItem struct {
	LocationID   id.ID          `json:"locationId"`
	LocationName string         `json:"locationName"`
	ProductID    id.ID          `json:"productId"`
	ProductName  string         `json:"productName"`
	ProductSKU   string         `json:"productSku"`
	Unit         string         `json:"unit"`
	Quantity     types.Quantity `json:"quantity"`
	Reserved     types.Quantity `json:"reservedQuantity"`

	// Available may be negative when reservations exceed on-hand stock.
	Available types.Quantity `json:"availableQuantity"`
}

// StockBalanceReport is the full balance report.
type StockBalanceReport struct {
	AsOfDate   time.Time          `json:"asOfDate"`
	Items      []StockBalanceItem `json:"items"`
	TotalItems int                `json:"totalItems"`

	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalReserved types.Quantity `json:"totalReserved"`
}

// --- Stock Turnover Report ---

// StockTurnoverFilter defines the filter for the turnover report.
// FromDate and ToDate are required.
type StockTurnoverFilter struct {
	FromDate time.Time
	ToDate   time.Time

	LocationIDs []id.ID
	ProductIDs  []id.ID

	// Include rows with zero movement in the period
	IncludeZero bool

	Limit  int
	Offset int
}

// StockTurnoverItem is a single row of the turnover report. Balances are
// replayed from the ledger: opening = signed sum before FromDate,
// closing = opening + receipt - expense.
type StockTurnoverItem struct {
	LocationID   id.ID  `json:"locationId"`
	LocationName string `json:"locationName,omitempty"`
	ProductID    id.ID  `json:"productId"`
	ProductName  string `json:"productName,omitempty"`
	ProductSKU   string `json:"productSku,omitempty"`

	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipt        types.Quantity `json:"receipt"`
	Expense        types.Quantity `json:"expense"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

// StockTurnoverReport is the full turnover report.
type StockTurnoverReport struct {
	FromDate   time.Time           `json:"fromDate"`
	ToDate     time.Time           `json:"toDate"`
	Items      []StockTurnoverItem `json:"items"`
	TotalItems int                 `json:"totalItems"`

	TotalOpening types.Quantity `json:"totalOpening"`
	TotalReceipt types.Quantity `json:"totalReceipt"`
	TotalExpense types.Quantity `json:"totalExpense"`
	TotalClosing types.Quantity `json:"totalClosing"`
}

// --- Ledger Reconciliation ---

// ReconciliationFilter narrows the reconciliation run.
// Empty filter checks every (product, location) pair of the company.
type ReconciliationFilter struct {
	LocationIDs []id.ID
	ProductIDs  []id.ID

	// OnlyMismatches drops rows where the ledger agrees with the snapshot
	OnlyMismatches bool

	Limit  int
	Offset int
}

// ReconciliationItem compares one snapshot row against its ledger replay.
type ReconciliationItem struct {
	ProductID  id.ID `json:"productId"`
	LocationID id.ID `json:"locationId"`

	// SnapshotQuantity is the inventory record's current on-hand value.
	SnapshotQuantity types.Quantity `json:"snapshotQuantity"`

	// LedgerQuantity is the signed sum of every movement entry for the pair.
	LedgerQuantity types.Quantity `json:"ledgerQuantity"`

	Difference types.Quantity `json:"difference"`
	Consistent bool           `json:"consistent"`
}

// ReconciliationReport is the outcome of a ledger replay.
type ReconciliationReport struct {
	RunAt      time.Time            `json:"runAt"`
	Items      []ReconciliationItem `json:"items"`
	TotalPairs int                  `json:"totalPairs"`
	Mismatches int                  `json:"mismatches"`
}

// --- Sales Summary ---

// SalesSummaryFilter defines the filter for the daily sales summary.
type SalesSummaryFilter struct {
	FromDate time.Time
	ToDate   time.Time

	LocationIDs []id.ID

	Limit  int
	Offset int
}

// SalesSummaryItem aggregates completed sales for one location and day.
type SalesSummaryItem struct {
	Day          time.Time   `json:"day"`
	LocationID   id.ID       `json:"locationId"`
	LocationName string      `json:"locationName,omitempty"`
	SaleCount    int         `json:"saleCount"`
	ItemCount    int         `json:"itemCount"`
	GrossTotal   types.Money `json:"grossTotal"`
	DiscountSum  types.Money `json:"discountSum"`
	TaxSum       types.Money `json:"taxSum"`
}

// SalesSummaryReport is the full sales summary.
type SalesSummaryReport struct {
	FromDate   time.Time          `json:"fromDate"`
	ToDate     time.Time          `json:"toDate"`
	Items      []SalesSummaryItem `json:"items"`
	TotalItems int                `json:"totalItems"`
}
