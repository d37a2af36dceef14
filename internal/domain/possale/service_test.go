package possale

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain"
	"posledger/internal/domain/inventory"
	"posledger/pkg/numerator"
)

// --- fakes ---

type fakeSaleRepo struct {
	sales map[id.ID]PosSale
	items map[id.ID][]PosSaleItem
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: make(map[id.ID]PosSale),
		items: make(map[id.ID][]PosSaleItem),
	}
}

func (r *fakeSaleRepo) Create(ctx context.Context, sale *PosSale) error {
	s := *sale
	s.Items = nil
	r.sales[sale.ID] = s
	return nil
}

func (r *fakeSaleRepo) Update(ctx context.Context, sale *PosSale) error {
	if _, ok := r.sales[sale.ID]; !ok {
		return apperror.NewNotFound("sale", sale.ID.String())
	}
	s := *sale
	s.Items = nil
	r.sales[sale.ID] = s
	return nil
}

func (r *fakeSaleRepo) Delete(ctx context.Context, companyID, saleID id.ID) error {
	delete(r.sales, saleID)
	delete(r.items, saleID)
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, companyID, saleID id.ID) (*PosSale, error) {
	s, ok := r.sales[saleID]
	if !ok || s.CompanyID != companyID {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	c := s
	return &c, nil
}

func (r *fakeSaleRepo) GetByNumber(ctx context.Context, companyID id.ID, number string) (*PosSale, error) {
	for _, s := range r.sales {
		if s.CompanyID == companyID && s.Number == number {
			c := s
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("sale", number)
}

func (r *fakeSaleRepo) List(ctx context.Context, companyID id.ID, filter ListFilter) (domain.ListResult[*PosSale], error) {
	var out []*PosSale
	for _, s := range r.sales {
		if s.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		c := s
		out = append(out, &c)
	}
	return domain.ListResult[*PosSale]{Items: out, TotalCount: int64(len(out)), Limit: filter.Limit}, nil
}

func (r *fakeSaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]PosSaleItem, error) {
	return append([]PosSaleItem(nil), r.items[saleID]...), nil
}

func (r *fakeSaleRepo) SaveItems(ctx context.Context, saleID id.ID, items []PosSaleItem) error {
	r.items[saleID] = append([]PosSaleItem(nil), items...)
	return nil
}

type fakeInvRepo struct {
	records map[string]inventory.InventoryRecord
	entries []inventory.MovementEntry
}

func newFakeInvRepo() *fakeInvRepo {
	return &fakeInvRepo{records: make(map[string]inventory.InventoryRecord)}
}

func invKey(companyID, productID, locationID id.ID) string {
	return fmt.Sprintf("%s|%s|%s", companyID, productID, locationID)
}

func (r *fakeInvRepo) GetRecord(ctx context.Context, companyID, productID, locationID id.ID) (*inventory.InventoryRecord, error) {
	rec, ok := r.records[invKey(companyID, productID, locationID)]
	if !ok {
		return nil, apperror.NewNotFound("inventory record", productID.String())
	}
	c := rec
	return &c, nil
}

func (r *fakeInvRepo) GetRecordForUpdate(ctx context.Context, companyID, productID, locationID id.ID) (*inventory.InventoryRecord, error) {
	return r.GetRecord(ctx, companyID, productID, locationID)
}

func (r *fakeInvRepo) CreateRecord(ctx context.Context, rec *inventory.InventoryRecord) error {
	r.records[invKey(rec.CompanyID, rec.ProductID, rec.LocationID)] = *rec
	return nil
}

func (r *fakeInvRepo) UpdateRecord(ctx context.Context, rec *inventory.InventoryRecord) error {
	r.records[invKey(rec.CompanyID, rec.ProductID, rec.LocationID)] = *rec
	return nil
}

func (r *fakeInvRepo) ListRecords(ctx context.Context, companyID id.ID, filter inventory.RecordFilter) ([]*inventory.InventoryRecord, error) {
	var out []*inventory.InventoryRecord
	for _, rec := range r.records {
		if rec.CompanyID == companyID {
			c := rec
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeInvRepo) CreateEntry(ctx context.Context, entry *inventory.MovementEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeInvRepo) ListEntries(ctx context.Context, companyID id.ID, filter inventory.MovementFilter) ([]*inventory.MovementEntry, error) {
	var out []*inventory.MovementEntry
	for i := range r.entries {
		if r.entries[i].CompanyID == companyID {
			e := r.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

// fakeTxManager snapshots all stores and restores them when fn fails,
// mimicking a rollback across the sale and inventory writes.
type fakeTxManager struct {
	saleRepo *fakeSaleRepo
	invRepo  *fakeInvRepo
	seq      *fakeSequence
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sales := make(map[id.ID]PosSale, len(m.saleRepo.sales))
	for k, v := range m.saleRepo.sales {
		sales[k] = v
	}
	items := make(map[id.ID][]PosSaleItem, len(m.saleRepo.items))
	for k, v := range m.saleRepo.items {
		items[k] = append([]PosSaleItem(nil), v...)
	}
	records := make(map[string]inventory.InventoryRecord, len(m.invRepo.records))
	for k, v := range m.invRepo.records {
		records[k] = v
	}
	entries := append([]inventory.MovementEntry(nil), m.invRepo.entries...)
	counters := make(map[string]int64, len(m.seq.counters))
	for k, v := range m.seq.counters {
		counters[k] = v
	}

	if err := fn(ctx); err != nil {
		m.saleRepo.sales = sales
		m.saleRepo.items = items
		m.invRepo.records = records
		m.invRepo.entries = entries
		m.seq.counters = counters
		return err
	}
	return nil
}

// fakeSequence emulates the sys_sequences UPSERT.
type fakeSequence struct {
	counters map[string]int64
}

type fakeRow struct{ val int64 }

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return fmt.Errorf("expected one destination, got %d", len(dest))
	}
	p, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("expected *int64 destination")
	}
	*p = r.val
	return nil
}

func (q *fakeSequence) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	key := fmt.Sprintf("%v|%v", args[0], args[1])
	q.counters[key]++
	return fakeRow{val: q.counters[key]}
}

// --- fixture ---

type fixture struct {
	saleRepo *fakeSaleRepo
	invRepo  *fakeInvRepo
	svc      *Service
}

func newFixture() *fixture {
	saleRepo := newFakeSaleRepo()
	invRepo := newFakeInvRepo()
	seq := &fakeSequence{counters: make(map[string]int64)}
	txm := &fakeTxManager{saleRepo: saleRepo, invRepo: invRepo, seq: seq}
	num := numerator.New(func(ctx context.Context) numerator.Querier { return seq })
	svc := NewService(saleRepo, invRepo, inventory.NewMutator(invRepo), num, txm, "INV")
	return &fixture{saleRepo: saleRepo, invRepo: invRepo, svc: svc}
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func seedStock(f *fixture, companyID, productID, locationID id.ID, onHand float64) {
	rec := inventory.NewInventoryRecord(companyID, productID, locationID)
	rec.Quantity = qty(onHand)
	f.invRepo.records[invKey(companyID, productID, locationID)] = *rec
}

func completedPaidSale(companyID, locationID id.ID) *PosSale {
	sale := NewPosSale(companyID, locationID, "cashier-1")
	sale.PaymentMethod = "cash"
	sale.Status = StatusCompleted
	sale.PaymentStatus = PaymentPaid
	return sale
}

// --- tests ---

func TestCreateSale_CompletedPaidDecrementsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID := id.New(), id.New()
	product1, product2 := id.New(), id.New()
	seedStock(f, company, product1, locationID, 10)
	seedStock(f, company, product2, locationID, 10)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(product1, qty(2), types.NewMoney(5), types.Zero(), types.Zero())
	sale.AddItem(product2, qty(3), types.NewMoney(4), types.Zero(), types.Zero())

	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	assert.NotEmpty(t, created.Number)
	assert.Regexp(t, `^INV-\d{8}-0001$`, created.Number)

	rec1, _ := f.invRepo.GetRecord(ctx, company, product1, locationID)
	rec2, _ := f.invRepo.GetRecord(ctx, company, product2, locationID)
	assert.Equal(t, qty(8), rec1.Quantity)
	assert.Equal(t, qty(7), rec2.Quantity)

	require.Len(t, f.invRepo.entries, 2)
	for _, e := range f.invRepo.entries {
		assert.Equal(t, inventory.MovementOut, e.MovementType)
		assert.Equal(t, inventory.RefPosSale, e.ReferenceType)
		require.NotNil(t, e.ReferenceID)
		assert.Equal(t, created.ID, *e.ReferenceID)
	}

	assert.Len(t, f.saleRepo.sales, 1)
	assert.Len(t, f.saleRepo.items[created.ID], 2)
}

func TestCreateSale_ComputesLineTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 100)

	sale := completedPaidSale(company, locationID)
	// 3 * 10.00 - 2.50 + 1.80 = 29.30
	sale.AddItem(productID, qty(3), types.MustMoney("10.00"), types.MustMoney("2.50"), types.MustMoney("1.80"))

	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	require.Len(t, created.Items, 1)
	assert.True(t, created.Items[0].LineTotal.Equal(types.MustMoney("29.30")),
		"line total = %s", created.Items[0].LineTotal)
	assert.True(t, created.Total.Equal(types.MustMoney("29.30")))
	assert.True(t, created.Subtotal.Equal(types.MustMoney("30.00")))
}

func TestCreateSale_ShortfallAbortsEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID := id.New(), id.New()
	product1, product2 := id.New(), id.New()
	seedStock(f, company, product1, locationID, 10)
	seedStock(f, company, product2, locationID, 1)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(product1, qty(2), types.NewMoney(5), types.Zero(), types.Zero())
	sale.AddItem(product2, qty(3), types.NewMoney(4), types.Zero(), types.Zero())

	_, err := f.svc.CreateSale(ctx, sale)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, product2.String(), appErr.Details["product_id"])

	// nothing persisted
	assert.Empty(t, f.saleRepo.sales)
	assert.Empty(t, f.invRepo.entries)
	rec1, _ := f.invRepo.GetRecord(ctx, company, product1, locationID)
	assert.Equal(t, qty(10), rec1.Quantity)
}

func TestCreateSale_PendingSaleSkipsInventory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()

	sale := NewPosSale(company, locationID, "cashier-1")
	sale.PaymentMethod = "card"
	sale.AddItem(productID, qty(50), types.NewMoney(2), types.Zero(), types.Zero())

	// no stock record exists; a pending sale must still be accepted
	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
	assert.Empty(t, f.invRepo.entries)
	assert.Empty(t, f.invRepo.records)
}

func TestCreateSale_CompletedUnpaidChecksButKeepsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 5)

	sale := completedPaidSale(company, locationID)
	sale.PaymentStatus = PaymentPending
	sale.AddItem(productID, qty(3), types.NewMoney(5), types.Zero(), types.Zero())

	_, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	rec, _ := f.invRepo.GetRecord(ctx, company, productID, locationID)
	assert.Equal(t, qty(5), rec.Quantity)
	assert.Empty(t, f.invRepo.entries)

	// but availability is still enforced for the completed status
	over := completedPaidSale(company, locationID)
	over.PaymentStatus = PaymentPending
	over.AddItem(productID, qty(50), types.NewMoney(5), types.Zero(), types.Zero())
	_, err = f.svc.CreateSale(ctx, over)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestCreateSale_AggregatesDuplicateProducts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 5)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(productID, qty(3), types.NewMoney(5), types.Zero(), types.Zero())
	sale.AddItem(productID, qty(3), types.NewMoney(5), types.Zero(), types.Zero())

	// 3 + 3 = 6 > 5 on hand, even though each line alone fits
	_, err := f.svc.CreateSale(ctx, sale)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestCreateSale_InvoiceNumbersAreSequential(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 100)

	var numbers []string
	for i := 0; i < 3; i++ {
		sale := completedPaidSale(company, locationID)
		sale.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
		created, err := f.svc.CreateSale(ctx, sale)
		require.NoError(t, err)
		numbers = append(numbers, created.Number)
	}

	date := time.Now().UTC().Format("20060102")
	assert.Equal(t, []string{
		"INV-" + date + "-0001",
		"INV-" + date + "-0002",
		"INV-" + date + "-0003",
	}, numbers)
}

func TestCreateSale_FailedSaleDoesNotBurnInvoiceNumber(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 1)

	over := completedPaidSale(company, locationID)
	over.AddItem(productID, qty(5), types.NewMoney(5), types.Zero(), types.Zero())
	_, err := f.svc.CreateSale(ctx, over)
	require.Error(t, err)

	ok := completedPaidSale(company, locationID)
	ok.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	created, err := f.svc.CreateSale(ctx, ok)
	require.NoError(t, err)
	assert.Regexp(t, `-0001$`, created.Number)
}

func TestCreateSale_ValidatesHeader(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()

	sale := NewPosSale(company, locationID, "")
	sale.PaymentMethod = "cash"
	sale.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())

	_, err := f.svc.CreateSale(ctx, sale)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	noMethod := NewPosSale(company, locationID, "cashier-1")
	noMethod.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	_, err = f.svc.CreateSale(ctx, noMethod)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	noItems := NewPosSale(company, locationID, "cashier-1")
	noItems.PaymentMethod = "cash"
	_, err = f.svc.CreateSale(ctx, noItems)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdateSale_ReplacesItemsWithoutTouchingInventory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 10)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(productID, qty(2), types.NewMoney(5), types.Zero(), types.Zero())
	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)
	require.Len(t, f.invRepo.entries, 1)

	patch := completedPaidSale(company, locationID)
	patch.AddItem(productID, qty(7), types.NewMoney(5), types.Zero(), types.Zero())

	updated, err := f.svc.UpdateSale(ctx, company, created.ID, patch)
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, qty(7), updated.Items[0].Quantity)
	assert.Equal(t, created.Number, updated.Number)

	// inventory and ledger are untouched by the edit
	rec, _ := f.invRepo.GetRecord(ctx, company, productID, locationID)
	assert.Equal(t, qty(8), rec.Quantity)
	assert.Len(t, f.invRepo.entries, 1)
}

func TestUpdateSale_CancelledOnlyBackToCompleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 10)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	_, err = f.svc.CancelSale(ctx, company, created.ID)
	require.NoError(t, err)

	toPending := completedPaidSale(company, locationID)
	toPending.Status = StatusPending
	toPending.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	_, err = f.svc.UpdateSale(ctx, company, created.ID, toPending)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	toCompleted := completedPaidSale(company, locationID)
	toCompleted.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	updated, err := f.svc.UpdateSale(ctx, company, created.ID, toCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
}

func TestCancelSale_DoesNotRestock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 10)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(productID, qty(4), types.NewMoney(5), types.Zero(), types.Zero())
	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelSale(ctx, company, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	rec, _ := f.invRepo.GetRecord(ctx, company, productID, locationID)
	assert.Equal(t, qty(6), rec.Quantity)
	assert.Len(t, f.invRepo.entries, 1)
}

func TestDeleteSale_ForbiddenForCompletedPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 10)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	err = f.svc.DeleteSale(ctx, company, created.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))

	pending := NewPosSale(company, locationID, "cashier-1")
	pending.PaymentMethod = "cash"
	pending.AddItem(productID, qty(1), types.NewMoney(5), types.Zero(), types.Zero())
	p, err := f.svc.CreateSale(ctx, pending)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSale(ctx, company, p.ID))
	_, err = f.svc.GetByID(ctx, company, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetByID_LoadsItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	company, locationID, productID := id.New(), id.New(), id.New()
	seedStock(f, company, productID, locationID, 10)

	sale := completedPaidSale(company, locationID)
	sale.AddItem(productID, qty(2), types.NewMoney(5), types.Zero(), types.Zero())
	created, err := f.svc.CreateSale(ctx, sale)
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, company, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, productID, got.Items[0].ProductID)

	// company scoping
	_, err = f.svc.GetByID(ctx, id.New(), created.ID)
	assert.True(t, apperror.IsNotFound(err))
}
