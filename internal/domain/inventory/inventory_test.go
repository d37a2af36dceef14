package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/core/types"
)

// fakeRepo is an in-memory Repository for service-level tests.
type fakeRepo struct {
	records map[string]InventoryRecord
	entries []MovementEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]InventoryRecord)}
}

func key(companyID, productID, locationID id.ID) string {
	return fmt.Sprintf("%s|%s|%s", companyID, productID, locationID)
}

func (r *fakeRepo) GetRecord(ctx context.Context, companyID, productID, locationID id.ID) (*InventoryRecord, error) {
	rec, ok := r.records[key(companyID, productID, locationID)]
	if !ok {
		return nil, apperror.NewNotFound("inventory record", productID.String())
	}
	c := rec
	return &c, nil
}

func (r *fakeRepo) GetRecordForUpdate(ctx context.Context, companyID, productID, locationID id.ID) (*InventoryRecord, error) {
	return r.GetRecord(ctx, companyID, productID, locationID)
}

func (r *fakeRepo) CreateRecord(ctx context.Context, rec *InventoryRecord) error {
	r.records[key(rec.CompanyID, rec.ProductID, rec.LocationID)] = *rec
	return nil
}

func (r *fakeRepo) UpdateRecord(ctx context.Context, rec *InventoryRecord) error {
	r.records[key(rec.CompanyID, rec.ProductID, rec.LocationID)] = *rec
	return nil
}

func (r *fakeRepo) ListRecords(ctx context.Context, companyID id.ID, filter RecordFilter) ([]*InventoryRecord, error) {
	var out []*InventoryRecord
	for _, rec := range r.records {
		if rec.CompanyID != companyID {
			continue
		}
		if filter.ReservedGT && !rec.Reserved.IsPositive() {
			continue
		}
		c := rec
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeRepo) CreateEntry(ctx context.Context, entry *MovementEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeRepo) ListEntries(ctx context.Context, companyID id.ID, filter MovementFilter) ([]*MovementEntry, error) {
	var out []*MovementEntry
	for i := range r.entries {
		e := r.entries[i]
		if e.CompanyID != companyID {
			continue
		}
		if filter.ProductID != nil && e.ProductID != *filter.ProductID {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

// fakeTxManager runs fn directly and restores repo state on error,
// mimicking a rollback.
type fakeTxManager struct {
	repo *fakeRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	recordsBackup := make(map[string]InventoryRecord, len(m.repo.records))
	for k, v := range m.repo.records {
		recordsBackup[k] = v
	}
	entriesBackup := make([]MovementEntry, len(m.repo.entries))
	copy(entriesBackup, m.repo.entries)

	if err := fn(ctx); err != nil {
		m.repo.records = recordsBackup
		m.repo.entries = entriesBackup
		return err
	}
	return nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func seedRecord(repo *fakeRepo, companyID, productID, locationID id.ID, onHand, reserved float64) {
	rec := NewInventoryRecord(companyID, productID, locationID)
	rec.Quantity = qty(onHand)
	rec.Reserved = qty(reserved)
	repo.records[key(companyID, productID, locationID)] = *rec
}

// --- Mutator ---

func TestMutator_OutDecrementsAndAppendsLedger(t *testing.T) {
	repo := newFakeRepo()
	mut := NewMutator(repo)
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()
	seedRecord(repo, company, productID, locationID, 10, 0)

	rec, entry, err := mut.ApplyMovement(ctx, Movement{
		CompanyID:     company,
		ProductID:     productID,
		LocationID:    locationID,
		Quantity:      qty(4),
		MovementType:  MovementOut,
		ReferenceType: RefAdjustment,
	})
	require.NoError(t, err)

	assert.Equal(t, qty(6), rec.Quantity)
	require.NotNil(t, entry)
	assert.Equal(t, MovementOut, entry.MovementType)
	assert.Equal(t, RefAdjustment, entry.ReferenceType)
	assert.Equal(t, qty(4), entry.Quantity)
	assert.Len(t, repo.entries, 1)
}

func TestMutator_InsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	mut := NewMutator(repo)
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()
	seedRecord(repo, company, productID, locationID, 6, 0)

	_, _, err := mut.ApplyMovement(ctx, Movement{
		CompanyID:     company,
		ProductID:     productID,
		LocationID:    locationID,
		Quantity:      qty(20),
		MovementType:  MovementOut,
		ReferenceType: RefAdjustment,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Contains(t, appErr.Message, "Available quantity: 6.0000")
	assert.Equal(t, "6.0000", appErr.Details["available"])

	// quantity unchanged, no ledger row
	rec, _ := repo.GetRecord(ctx, company, productID, locationID)
	assert.Equal(t, qty(6), rec.Quantity)
	assert.Empty(t, repo.entries)
}

func TestMutator_OutAgainstMissingRecord(t *testing.T) {
	repo := newFakeRepo()
	mut := NewMutator(repo)
	ctx := context.Background()

	_, _, err := mut.ApplyMovement(ctx, Movement{
		CompanyID:     id.New(),
		ProductID:     id.New(),
		LocationID:    id.New(),
		Quantity:      qty(1),
		MovementType:  MovementOut,
		ReferenceType: RefAdjustment,
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoInventoryRecord))
}

func TestMutator_InCreatesRecordLazily(t *testing.T) {
	repo := newFakeRepo()
	mut := NewMutator(repo)
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()

	rec, _, err := mut.ApplyMovement(ctx, Movement{
		CompanyID:     company,
		ProductID:     productID,
		LocationID:    locationID,
		Quantity:      qty(15),
		MovementType:  MovementIn,
		ReferenceType: RefOpeningStock,
	})
	require.NoError(t, err)
	assert.Equal(t, qty(15), rec.Quantity)
	assert.True(t, rec.Reserved.IsZero())
}

func TestMutator_InvalidCombinations(t *testing.T) {
	repo := newFakeRepo()
	mut := NewMutator(repo)
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()
	seedRecord(repo, company, productID, locationID, 10, 0)

	cases := []struct {
		ref ReferenceType
		mt  MovementType
	}{
		{RefOpeningStock, MovementOut},
		{RefOrderPurchase, MovementOut},
		{RefPosReturn, MovementOut},
		{RefPosSale, MovementIn},
		{ReferenceType("UNKNOWN"), MovementIn},
	}

	for _, tc := range cases {
		_, _, err := mut.ApplyMovement(ctx, Movement{
			CompanyID:     company,
			ProductID:     productID,
			LocationID:    locationID,
			Quantity:      qty(1),
			MovementType:  tc.mt,
			ReferenceType: tc.ref,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidReferenceType),
			"expected invalid combination for %s/%s", tc.ref, tc.mt)
	}
}

// --- Stock movement service ---

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, NewMutator(repo), &fakeTxManager{repo: repo})
}

func TestService_CreateMovement_ValidatesInput(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateMovement(ctx, Movement{
		CompanyID:     id.New(),
		ProductID:     id.New(),
		LocationID:    id.New(),
		Quantity:      qty(0),
		MovementType:  MovementIn,
		ReferenceType: RefAdjustment,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_CreateMovement_RejectsSaleReferences(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, ref := range []ReferenceType{RefPosSale, ReferenceType("ORDER_SELL"), RefPosReturn} {
		_, err := svc.CreateMovement(ctx, Movement{
			CompanyID:     id.New(),
			ProductID:     id.New(),
			LocationID:    id.New(),
			Quantity:      qty(1),
			MovementType:  MovementOut,
			ReferenceType: ref,
		})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation),
			"expected %s to be rejected for direct movements", ref)
	}
}

func TestService_CreateMovement_OpeningStockMustBeIn(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateMovement(ctx, Movement{
		CompanyID:     id.New(),
		ProductID:     id.New(),
		LocationID:    id.New(),
		Quantity:      qty(5),
		MovementType:  MovementOut,
		ReferenceType: RefOpeningStock,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidReferenceType))
	assert.Empty(t, repo.entries)
}

func TestService_CreateMovement_RollsBackOnFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()
	seedRecord(repo, company, productID, locationID, 3, 0)

	_, err := svc.CreateMovement(ctx, Movement{
		CompanyID:     company,
		ProductID:     productID,
		LocationID:    locationID,
		Quantity:      qty(5),
		MovementType:  MovementOut,
		ReferenceType: RefTransfer,
	})
	require.Error(t, err)

	rec, _ := repo.GetRecord(ctx, company, productID, locationID)
	assert.Equal(t, qty(3), rec.Quantity)
	assert.Empty(t, repo.entries)
}

func TestService_GetQuantity_MissingRecordReadsZero(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	q, err := svc.GetQuantity(ctx, id.New(), id.New(), id.New())
	require.NoError(t, err)
	assert.True(t, q.IsZero())
}

// --- Ledger reconciliation ---

func TestLedgerReplayMatchesSnapshot(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()

	steps := []Movement{
		{Quantity: qty(100), MovementType: MovementIn, ReferenceType: RefOpeningStock},
		{Quantity: qty(30), MovementType: MovementOut, ReferenceType: RefAdjustment},
		{Quantity: qty(12.5), MovementType: MovementIn, ReferenceType: RefOrderPurchase},
		{Quantity: qty(7.25), MovementType: MovementOut, ReferenceType: RefTransfer},
	}
	for _, mv := range steps {
		mv.CompanyID, mv.ProductID, mv.LocationID = company, productID, locationID
		_, err := svc.CreateMovement(ctx, mv)
		require.NoError(t, err)
	}

	entries, err := svc.ListMovements(ctx, company, MovementFilter{ProductID: &productID})
	require.NoError(t, err)

	var replayed types.Quantity
	for _, e := range entries {
		replayed = replayed.Add(e.SignedQuantity())
	}

	rec, err := svc.GetRecord(ctx, company, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, rec.Quantity, replayed)
	assert.Equal(t, qty(75.25), rec.Quantity)
}

// --- Reserved-quantity adjuster ---

func TestReservedAdjuster_CreatesMissingRecord(t *testing.T) {
	repo := newFakeRepo()
	adj := NewReservedAdjuster(repo, &fakeTxManager{repo: repo})
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()

	out, err := adj.SetReservedQuantities(ctx, company, []ReservedInput{
		{ProductID: productID, LocationID: locationID, Quantity: qty(5)},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Quantity.IsZero())
	assert.Equal(t, qty(5), out[0].Reserved)
}

func TestReservedAdjuster_RejectsNegativeBeforeAnyWrite(t *testing.T) {
	repo := newFakeRepo()
	adj := NewReservedAdjuster(repo, &fakeTxManager{repo: repo})
	ctx := context.Background()
	company := id.New()

	_, err := adj.SetReservedQuantities(ctx, company, []ReservedInput{
		{ProductID: id.New(), LocationID: id.New(), Quantity: qty(3)},
		{ProductID: id.New(), LocationID: id.New(), Quantity: qty(-1)},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, repo.records)
}

func TestReservedAdjuster_MayExceedOnHand(t *testing.T) {
	repo := newFakeRepo()
	adj := NewReservedAdjuster(repo, &fakeTxManager{repo: repo})
	ctx := context.Background()
	company, productID, locationID := id.New(), id.New(), id.New()
	seedRecord(repo, company, productID, locationID, 2, 0)

	out, err := adj.SetReservedQuantities(ctx, company, []ReservedInput{
		{ProductID: productID, LocationID: locationID, Quantity: qty(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, qty(10), out[0].Reserved)
	assert.Equal(t, qty(-8), out[0].Available())
}
