package numerator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"posledger/internal/core/id"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT per (company_id, key).
type mockQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{vals: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	companyID := fmt.Sprintf("%v", args[0])
	key := fmt.Sprintf("%v", args[1])
	mapKey := companyID + "|" + key

	if strings.Contains(sql, "current_val = $3") {
		// SetNextValue path
		m.vals[mapKey] = args[2].(int64)
	} else {
		m.vals[mapKey]++
	}
	return &mockRow{val: m.vals[mapKey]}
}

func provider(q Querier) QuerierProvider {
	return func(ctx context.Context) Querier { return q }
}

func TestNextNumber_InvoiceSequential(t *testing.T) {
	q := newMockQuerier()
	svc := New(provider(q))
	ctx := context.Background()
	company := id.New()
	cfg := InvoiceConfig("INV")
	day := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	num, err := svc.NextNumber(ctx, company, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-20260315-0001" {
		t.Errorf("expected INV-20260315-0001, got %s", num)
	}

	num, err = svc.NextNumber(ctx, company, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-20260315-0002" {
		t.Errorf("expected INV-20260315-0002, got %s", num)
	}
}

func TestNextNumber_DailyReset(t *testing.T) {
	q := newMockQuerier()
	svc := New(provider(q))
	ctx := context.Background()
	company := id.New()
	cfg := InvoiceConfig("INV")

	day1 := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 16, 0, 1, 0, 0, time.UTC)

	_, _ = svc.NextNumber(ctx, company, cfg, day1)
	_, _ = svc.NextNumber(ctx, company, cfg, day1)

	num, err := svc.NextNumber(ctx, company, cfg, day2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-20260316-0001" {
		t.Errorf("expected counter reset on new day, got %s", num)
	}
}

func TestNextNumber_CompaniesIndependent(t *testing.T) {
	q := newMockQuerier()
	svc := New(provider(q))
	ctx := context.Background()
	cfg := InvoiceConfig("INV")
	day := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	companyA := id.New()
	companyB := id.New()

	_, _ = svc.NextNumber(ctx, companyA, cfg, day)
	_, _ = svc.NextNumber(ctx, companyA, cfg, day)

	num, err := svc.NextNumber(ctx, companyB, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-20260315-0001" {
		t.Errorf("expected independent sequence per company, got %s", num)
	}
}

func TestNextNumber_DocumentFormat(t *testing.T) {
	q := newMockQuerier()
	svc := New(provider(q))
	ctx := context.Background()
	company := id.New()
	cfg := DocumentConfig("MOV")
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextNumber(ctx, company, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "MOV-2026-00001" {
		t.Errorf("expected MOV-2026-00001, got %s", num)
	}
}

func TestSetNextValue(t *testing.T) {
	q := newMockQuerier()
	svc := New(provider(q))
	ctx := context.Background()
	company := id.New()
	cfg := DocumentConfig("MOV")
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	if err := svc.SetNextValue(ctx, company, cfg, day, 41); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	num, err := svc.NextNumber(ctx, company, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "MOV-2026-00042" {
		t.Errorf("expected MOV-2026-00042, got %s", num)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]int64{
		"INV-20260315-0042": 42,
		"MOV-2026-00007":    7,
		"garbage":           -1,
	}
	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Errorf("ParseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
