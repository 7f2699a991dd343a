package item

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	potion ItemID = 1 // stacks to 10
	sword  ItemID = 2 // does not stack
	gem    ItemID = 3 // stacks to 100
	ore    ItemID = 4 // upgrade material, stacks to 20
)

func testCatalog() MapCatalog {
	return MapCatalog{
		potion: {ID: potion, Name: "Potion", Type: "consumable", MaxStack: 10},
		sword:  {ID: sword, Name: "Short Sword", Type: "weapon", MaxStack: 1},
		gem:    {ID: gem, Name: "Gem", Type: "material", MaxStack: 100},
		ore:    {ID: ore, Name: "Mithril Ore", Type: "material", MaxStack: 20},
	}
}

func newInv(t *testing.T, perRow, rows, maxRows int, opts ...Option) *Inventory {
	t.Helper()
	return New(Config{
		SlotsPerRow: perRow,
		InitialRows: rows,
		MaxRows:     maxRows,
	}, testCatalog(), opts...)
}

// fakeSink records what the inventory asks of the world.
type fakeSink struct {
	nearby   []*Inventory
	spawnErr error
	spawned  []*Inventory

	lastOrigin   Location
	lastDistance float64
}

func (f *fakeSink) NearbyContainers(origin Location, maxDistance float64) []*Inventory {
	f.lastOrigin = origin
	f.lastDistance = maxDistance
	return f.nearby
}

func (f *fakeSink) SpawnContainer(origin Location, seed Stack) (*Inventory, error) {
	if f.spawnErr != nil {
		return nil, f.spawnErr
	}
	bag := New(Config{SlotsPerRow: 5, InitialRows: 1, MaxRows: 1}, testCatalog())
	res := bag.AddItem(seed, false, false)
	if !res.Accepted || res.Leftover > 0 {
		return nil, errors.New("seed rejected")
	}
	f.spawned = append(f.spawned, bag)
	return bag, nil
}

// requireSlotInvariant checks that every slot is either fully empty or
// holds a positive quantity of a real item.
func requireSlotInvariant(t *testing.T, inv *Inventory) {
	t.Helper()
	for i, s := range inv.Slots() {
		require.Equal(t, s.Qty == 0, s.Item == NoItem, "slot %d: %+v", i, s)
		require.GreaterOrEqual(t, s.Qty, 0, "slot %d", i)
	}
}

func countEvents(inv *Inventory) (changed, rows *int) {
	changed, rows = new(int), new(int)
	inv.OnChanged("test", func(*Inventory) { *changed++ })
	inv.OnRowAdded("test", func(*Inventory) { *rows++ })
	return changed, rows
}
