package inventory_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
	memstore "github.com/warp/inventory-engine/inventory/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger() (*inventory.StockLedger, *memstore.Memory) {
	store := memstore.NewMemory()
	return inventory.NewStockLedger(store), store
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustAddItem(t *testing.T, ledger *inventory.StockLedger, name, unitPrice string, stock int) inventory.Item {
	t.Helper()
	item, _, err := ledger.AddItem(context.Background(), name, price(unitPrice), stock)
	require.NoError(t, err)
	return item
}

// interceptStore runs a hook once, just before the first conditional write,
// standing in for another client committing inside the race window.
type interceptStore struct {
	inventory.Store
	fired bool
	hook  func(ctx context.Context)
}

func (s *interceptStore) CompareAndSwapItem(ctx context.Context, expected, updated inventory.Item) error {
	if !s.fired && s.hook != nil {
		s.fired = true
		s.hook(ctx)
	}
	return s.Store.CompareAndSwapItem(ctx, expected, updated)
}

// rewriteItem changes a record directly in the backing store, bypassing the
// ledger under test.
func rewriteItem(t *testing.T, ctx context.Context, st inventory.Store, id string, change func(*inventory.Item)) {
	t.Helper()
	items, err := st.ListItems(ctx)
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == id {
			change(&it)
			require.NoError(t, st.UpdateItem(ctx, id, it))
			return
		}
	}
	t.Fatalf("item %s not found in backing store", id)
}

// conflictStore forces a number of CAS conflicts before delegating.
type conflictStore struct {
	inventory.Store
	remaining int
}

func (c *conflictStore) CompareAndSwapItem(ctx context.Context, expected, updated inventory.Item) error {
	if c.remaining > 0 {
		c.remaining--
		return inventory.ErrStoreConflict
	}
	return c.Store.CompareAndSwapItem(ctx, expected, updated)
}

// =============================================================================
// ADD ITEM
// =============================================================================

func TestAddItem_FirstItem_GetsIDOne(t *testing.T) {
	ledger, _ := newTestLedger()

	item, items, err := ledger.AddItem(context.Background(), "Aspirin", price("10.00"), 100)

	require.NoError(t, err)
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, "Aspirin", item.Name)
	assert.True(t, item.UnitPrice.Equal(price("10.00")))
	assert.Equal(t, 100, item.StockCount)
	require.Len(t, items, 1)
}

func TestAddItem_DuplicateName_CaseInsensitive_Rejected(t *testing.T) {
	ledger, _ := newTestLedger()
	mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	_, _, err := ledger.AddItem(context.Background(), "ASPIRIN", price("12.00"), 5)

	require.ErrorIs(t, err, inventory.ErrDuplicateName)

	items, listErr := ledger.Items(context.Background())
	require.NoError(t, listErr)
	assert.Len(t, items, 1)
}

func TestAddItem_InvalidInput_RejectedBeforeStore(t *testing.T) {
	ledger, _ := newTestLedger()

	cases := []struct {
		name      string
		itemName  string
		unitPrice string
		stock     int
	}{
		{"empty name", "  ", "10.00", 1},
		{"zero price", "Aspirin", "0", 1},
		{"negative price", "Aspirin", "-1.50", 1},
		{"negative stock", "Aspirin", "10.00", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ledger.AddItem(context.Background(), tc.itemName, price(tc.unitPrice), tc.stock)
			require.ErrorIs(t, err, inventory.ErrValidation)
		})
	}

	items, err := ledger.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items, "no store write for rejected input")
}

func TestAddItem_ZeroStock_Allowed(t *testing.T) {
	ledger, _ := newTestLedger()

	item := mustAddItem(t, ledger, "Aspirin", "10.00", 0)

	assert.Equal(t, 0, item.StockCount)
}

// =============================================================================
// PRICE AND STOCK MUTATIONS
// =============================================================================

func TestAdjustPrice_ReplacesPrice(t *testing.T) {
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	items, err := ledger.AdjustPrice(context.Background(), item.ID, price("12.50"))

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].UnitPrice.Equal(price("12.50")))
}

func TestAdjustPrice_NonPositive_Rejected(t *testing.T) {
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	_, err := ledger.AdjustPrice(context.Background(), item.ID, price("0"))

	require.ErrorIs(t, err, inventory.ErrValidation)
}

func TestAddStock_IncreasesCount(t *testing.T) {
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	items, err := ledger.AddStock(context.Background(), item.ID, 25)

	require.NoError(t, err)
	assert.Equal(t, 125, items[0].StockCount)
}

func TestAddStock_NonPositive_Rejected(t *testing.T) {
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	for _, qty := range []int{0, -5} {
		_, err := ledger.AddStock(context.Background(), item.ID, qty)
		require.ErrorIs(t, err, inventory.ErrValidation)
	}
}

func TestDeductStock_ReducesCount(t *testing.T) {
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	items, err := ledger.DeductStock(context.Background(), item.ID, 30)

	require.NoError(t, err)
	assert.Equal(t, 70, items[0].StockCount)
}

func TestDeductStock_ExceedsStock_RejectedUnchanged(t *testing.T) {
	// GIVEN stock 100, a deduction of 150 is rejected with stock untouched.
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	_, err := ledger.DeductStock(context.Background(), item.ID, 150)

	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	var shortfall *inventory.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 100, shortfall.Available)
	assert.Equal(t, 150, shortfall.Requested)

	items, listErr := ledger.Items(context.Background())
	require.NoError(t, listErr)
	assert.Equal(t, 100, items[0].StockCount, "no partial deduction")
}

func TestDeductStock_NeverGoesNegative(t *testing.T) {
	// Stock non-negativity holds across any call sequence: every deduction
	// that would cross zero is rejected and leaves the count unchanged.
	ledger, _ := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 10)

	deductions := []int{4, 4, 4, 2, 1}
	for _, qty := range deductions {
		items, err := ledger.Items(context.Background())
		require.NoError(t, err)
		before := items[0].StockCount

		items, err = ledger.DeductStock(context.Background(), item.ID, qty)
		if err != nil {
			require.ErrorIs(t, err, inventory.ErrInsufficientStock)
			items, err = ledger.Items(context.Background())
			require.NoError(t, err)
			assert.Equal(t, before, items[0].StockCount)
		}
		require.GreaterOrEqual(t, items[0].StockCount, 0)
	}
}

func TestMutations_UnknownItem_NotFound(t *testing.T) {
	ledger, _ := newTestLedger()

	_, err := ledger.AddStock(context.Background(), "99", 1)
	require.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = ledger.DeductStock(context.Background(), "99", 1)
	require.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = ledger.AdjustPrice(context.Background(), "99", price("1.00"))
	require.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = ledger.DeleteItem(context.Background(), "99")
	require.ErrorIs(t, err, inventory.ErrNotFound)
}

// =============================================================================
// DELETE AND RENUMBER
// =============================================================================

func TestDeleteItem_RenumbersRemaining(t *testing.T) {
	// GIVEN items "1","2", deleting "1" leaves the survivor renumbered to "1".
	ledger, _ := newTestLedger()
	first := mustAddItem(t, ledger, "Aspirin", "10.00", 100)
	mustAddItem(t, ledger, "Paracetamol", "8.00", 50)

	items, err := ledger.DeleteItem(context.Background(), first.ID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Paracetamol", items[0].Name)
}

func TestDeleteItem_IDsStayDense(t *testing.T) {
	// Id density holds for an arbitrary add/delete sequence: after each
	// delete the id set equals {1..N}.
	ledger, _ := newTestLedger()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		mustAddItem(t, ledger, "item-"+strconv.Itoa(i), "5.00", 10)
	}

	for _, id := range []string{"3", "1", "4"} {
		items, err := ledger.DeleteItem(ctx, id)
		require.NoError(t, err)

		seen := make(map[string]bool, len(items))
		for _, it := range items {
			seen[it.ID] = true
		}
		for n := 1; n <= len(items); n++ {
			assert.True(t, seen[strconv.Itoa(n)], "missing id %d after deleting %s", n, id)
		}
	}
}

func TestDeleteItem_NextAddContinuesSequence(t *testing.T) {
	ledger, _ := newTestLedger()
	mustAddItem(t, ledger, "Aspirin", "10.00", 100)
	second := mustAddItem(t, ledger, "Paracetamol", "8.00", 50)

	_, err := ledger.DeleteItem(context.Background(), second.ID)
	require.NoError(t, err)

	third := mustAddItem(t, ledger, "Vitamin C", "15.00", 20)
	assert.Equal(t, "2", third.ID)
}

func TestDeleteItem_RenumberKeepsConcurrentDeduction(t *testing.T) {
	// GIVEN: Items "1","2"; another client deducts 40 units from "2" between
	// the post-delete listing and the id rewrite
	// WHEN: Deleting "1" (renumbers "2" -> "1")
	// THEN: The renumbered record keeps the deducted stock
	backing := memstore.NewMemory()
	racing := &interceptStore{Store: backing}
	ledger := inventory.NewStockLedger(racing)
	ctx := context.Background()

	first := mustAddItem(t, ledger, "Aspirin", "10.00", 50)
	second := mustAddItem(t, ledger, "Paracetamol", "8.00", 100)
	racing.hook = func(ctx context.Context) {
		rewriteItem(t, ctx, backing, second.ID, func(it *inventory.Item) {
			it.StockCount -= 40
		})
	}

	items, err := ledger.DeleteItem(ctx, first.ID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 60, items[0].StockCount,
		"id rewrite must not restore stock sold by a concurrent client")
}

// =============================================================================
// OPTIMISTIC CONCURRENCY
// =============================================================================

func TestAddStock_KeepsConcurrentPriceChange(t *testing.T) {
	// GIVEN: Another client adjusts the price between this ledger's read and
	// its conditional write
	// WHEN: Adding stock
	// THEN: The stale write is refused and retried; the new price survives
	backing := memstore.NewMemory()
	racing := &interceptStore{Store: backing}
	ledger := inventory.NewStockLedger(racing)
	ctx := context.Background()

	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)
	racing.hook = func(ctx context.Context) {
		rewriteItem(t, ctx, backing, item.ID, func(it *inventory.Item) {
			it.UnitPrice = price("12.00")
		})
	}

	items, err := ledger.AddStock(ctx, item.ID, 25)

	require.NoError(t, err)
	assert.Equal(t, 125, items[0].StockCount)
	assert.True(t, items[0].UnitPrice.Equal(price("12.00")),
		"concurrent price change must not be overwritten by a stale record")
}

func TestDeductStock_RetriesOnConflict(t *testing.T) {
	// GIVEN: A store that reports one stale read before accepting
	// WHEN: Deducting stock
	// THEN: The ledger retries with a fresh read and succeeds
	ledger, backing := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	flaky := &conflictStore{Store: backing, remaining: 1}
	retrying := inventory.NewStockLedger(flaky)

	items, err := retrying.DeductStock(context.Background(), item.ID, 10)

	require.NoError(t, err)
	assert.Equal(t, 90, items[0].StockCount)
}

func TestDeductStock_RetryBudgetExhausted_ConcurrentModification(t *testing.T) {
	ledger, backing := newTestLedger()
	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)

	contended := &conflictStore{Store: backing, remaining: 100}
	exhausted := inventory.NewStockLedger(contended)

	_, err := exhausted.DeductStock(context.Background(), item.ID, 10)

	require.ErrorIs(t, err, inventory.ErrConcurrentModification)
	assert.True(t, inventory.IsRetryable(err))

	items, listErr := ledger.Items(context.Background())
	require.NoError(t, listErr)
	assert.Equal(t, 100, items[0].StockCount, "stock untouched after exhaustion")
}
