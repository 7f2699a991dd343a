package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InitialRows(t *testing.T) {
	inv := newInv(t, 5, 2, 5)
	assert.Equal(t, 2, inv.RowCount())
	assert.Equal(t, 10, inv.SlotCount())
	assert.Equal(t, 5, inv.SlotsPerRow())
	assert.True(t, inv.IsEmpty())
}

func TestNew_InitialRowsClampedToMax(t *testing.T) {
	inv := newInv(t, 4, 9, 3)
	assert.Equal(t, 3, inv.RowCount())
}

func TestNew_NormalizesConfig(t *testing.T) {
	inv := New(Config{}, testCatalog())
	assert.Equal(t, 1, inv.SlotsPerRow())
	assert.Equal(t, 1, inv.RowCount())
}

func TestAddRows_IgnoreCost(t *testing.T) {
	inv := newInv(t, 5, 1, 5)
	changed, rows := countEvents(inv)

	added, err := inv.AddRows(2, true)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 3, inv.RowCount())
	assert.Equal(t, 15, inv.SlotCount())
	assert.Equal(t, 2, *rows)
	assert.Equal(t, 1, *changed)
}

func TestAddRows_ClampedAtMax(t *testing.T) {
	inv := newInv(t, 5, 4, 5)
	_, rows := countEvents(inv)

	added, err := inv.AddRows(3, true)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 5, inv.RowCount())
	assert.Equal(t, 1, *rows, "one notification per appended row")
}

func TestAddRows_AtCapacity(t *testing.T) {
	inv := newInv(t, 5, 5, 5)
	changed, _ := countEvents(inv)

	added, err := inv.AddRows(1, true)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Zero(t, added)
	assert.Equal(t, 5, inv.RowCount())
	assert.Zero(t, *changed)
}

func TestAddRows_InvalidCount(t *testing.T) {
	inv := newInv(t, 5, 1, 5)
	_, err := inv.AddRows(0, true)
	assert.ErrorIs(t, err, ErrInvalidRowCount)
}

func TestAddRows_ChargesUpgradeItem(t *testing.T) {
	inv := New(Config{
		SlotsPerRow: 5, InitialRows: 1, MaxRows: 3,
		UpgradeItem: ore, UpgradeAmount: 3,
	}, testCatalog())
	require.True(t, inv.AddItem(Stack{Item: ore, Qty: 5}, false, false).Accepted)

	added, err := inv.AddRows(1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, inv.QuantityOf(ore))
	assert.Equal(t, 3, inv.UpgradeAmount())
}

func TestAddRows_CostAboveMaxStack(t *testing.T) {
	inv := New(Config{
		SlotsPerRow: 5, InitialRows: 1, MaxRows: 3,
		UpgradeItem: ore, UpgradeAmount: 25,
	}, testCatalog())
	inv.PlaceAt(Stack{Item: ore, Qty: 20}, 0)
	inv.PlaceAt(Stack{Item: ore, Qty: 10}, 1)

	added, err := inv.AddRows(1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, inv.RowCount())
	assert.Equal(t, 5, inv.QuantityOf(ore))
	assert.True(t, inv.ItemAt(0).Empty())
	assert.Equal(t, Slot{Item: ore, Qty: 5}, inv.ItemAt(1))
}

func TestAddRows_InsufficientUpgradeItem(t *testing.T) {
	inv := New(Config{
		SlotsPerRow: 5, InitialRows: 1, MaxRows: 3,
		UpgradeItem: ore, UpgradeAmount: 3,
	}, testCatalog())
	require.True(t, inv.AddItem(Stack{Item: ore, Qty: 2}, false, false).Accepted)
	changed, rows := countEvents(inv)

	added, err := inv.AddRows(1, false)
	assert.ErrorIs(t, err, ErrInsufficientUpgradeCost)
	assert.Zero(t, added)
	assert.Equal(t, 1, inv.RowCount())
	assert.Equal(t, 2, inv.QuantityOf(ore))
	assert.Zero(t, *changed)
	assert.Zero(t, *rows)
}

func TestAddRows_NeverExceedsMax(t *testing.T) {
	inv := newInv(t, 3, 1, 4)
	for i := 0; i < 10; i++ {
		_, _ = inv.AddRows(i%3+1, true)
		require.LessOrEqual(t, inv.RowCount(), 4)
		require.Zero(t, inv.SlotCount()%3)
	}
	assert.Equal(t, 4, inv.RowCount())
}

func TestAddRows_KeepsExistingSlots(t *testing.T) {
	inv := newInv(t, 2, 1, 3)
	require.True(t, inv.PlaceAt(Stack{Item: gem, Qty: 9}, 1))

	_, err := inv.AddRows(1, true)
	require.NoError(t, err)
	assert.Equal(t, Slot{Item: gem, Qty: 9}, inv.ItemAt(1))
	assert.True(t, inv.ItemAt(2).Empty())
	assert.True(t, inv.ItemAt(3).Empty())
}

func TestListeners_Unsubscribe(t *testing.T) {
	inv := newInv(t, 5, 1, 5)
	var order []string
	inv.OnChanged("a", func(*Inventory) { order = append(order, "a") })
	inv.OnChanged("b", func(*Inventory) { order = append(order, "b") })

	inv.PlaceAt(Stack{Item: potion, Qty: 1}, 0)
	assert.Equal(t, []string{"a", "b"}, order)

	inv.Unsubscribe("a")
	order = nil
	inv.PlaceAt(Stack{Item: potion, Qty: 2}, 0)
	assert.Equal(t, []string{"b"}, order)
}
