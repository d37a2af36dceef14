// Package numerator provides document auto-numbering.
// Numbers come from a per-company sequence row updated with UPSERT +
// RETURNING, so two concurrent callers can never get the same number.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"posledger/internal/core/id"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier for the current request.
// When a transaction is active in the context the provider must return it,
// so invoice numbers commit or roll back together with the sale.
type QuerierProvider func(ctx context.Context) Querier

// Service provides document numbering functionality.
type Service struct {
	querier QuerierProvider
}

// New creates a numerator service.
func New(provider QuerierProvider) *Service {
	return &Service{querier: provider}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "INV", "MOV")
	Prefix string

	// PadWidth is the minimum number width
	PadWidth int

	// ResetPeriod: "day", "month", "year", "never"
	ResetPeriod string
}

// InvoiceConfig returns the configuration for POS invoice numbers.
// Pattern: PREFIX-YYYYMMDD-NNNN, counter resets daily.
func InvoiceConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    4,
		ResetPeriod: "day",
	}
}

// DocumentConfig returns the configuration for stock movement documents.
// Pattern: PREFIX-YYYY-NNNNN, counter resets yearly.
func DocumentConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// NextNumber generates the next document number for the company.
func (s *Service) NextNumber(ctx context.Context, companyID id.ID, cfg Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := s.buildKey(cfg, period)

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
        INSERT INTO sys_sequences (company_id, key, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (company_id, key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, companyID, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return s.formatNumber(cfg, period, num), nil
}

// SetNextValue sets the sequence value directly (for migration purposes).
func (s *Service) SetNextValue(ctx context.Context, companyID id.ID, cfg Config, period time.Time, value int64) error {
	key := s.buildKey(cfg, period)

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (company_id, key, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, key) DO UPDATE SET current_val = $3
		RETURNING current_val
	`, companyID, key, value).Scan(&result)
	return err
}

// buildKey creates the sequence key based on config and period.
func (s *Service) buildKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "day":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01_02"))
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// formatNumber creates the final number string.
func (s *Service) formatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	switch cfg.ResetPeriod {
	case "day":
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("20060102"), padWidth, num)
	case "month":
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("200601"), padWidth, num)
	case "year":
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	default:
		return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
	}
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	patterns := []string{
		"%*[^-]-%*d-%d",
		"%*[^-]-%d",
	}

	for _, pattern := range patterns {
		if _, err := fmt.Sscanf(formatted, pattern, &num); err == nil {
			return num
		}
	}

	return -1
}
