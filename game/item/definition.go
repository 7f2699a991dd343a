package item

import "errors"

// ItemID identifies an item definition in the catalog.
type ItemID int

// NoItem marks an empty slot.
const NoItem ItemID = 0

const (
	// NoSlot is passed to Sink when the stack does not come from a slot.
	NoSlot = -1
	// NotFound is returned by the type searches when nothing matches.
	NotFound = -1
)

var (
	ErrUnknownItem             = errors.New("inventory: unknown item")
	ErrExceedsStackLimit       = errors.New("inventory: amount exceeds stack limit")
	ErrCapacityExceeded        = errors.New("inventory: row capacity exceeded")
	ErrInsufficientUpgradeCost = errors.New("inventory: not enough upgrade items")
	ErrOverflowUnresolved      = errors.New("inventory: overflow could not be placed")
	ErrInvalidRowCount         = errors.New("inventory: row count must be positive")
)

// Definition is the immutable metadata of an item. Definitions belong to
// the catalog; inventories only store their IDs.
type Definition struct {
	ID          ItemID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	MaxStack    int    `json:"max_stack"`
	IconIndex   int    `json:"icon_index"`
}

// Catalog resolves item definitions. Lookup must be side-effect free.
type Catalog interface {
	Lookup(id ItemID) (Definition, bool)
}

// MapCatalog is a Catalog backed by a plain map.
type MapCatalog map[ItemID]Definition

// Lookup implements Catalog.
func (c MapCatalog) Lookup(id ItemID) (Definition, bool) {
	d, ok := c[id]
	return d, ok
}

// Slot is one storage cell. A slot is empty when Qty is 0, and then Item is
// always NoItem.
type Slot struct {
	Item ItemID `json:"item_id"`
	Qty  int    `json:"qty"`
}

// Empty reports whether the slot holds nothing.
func (s Slot) Empty() bool { return s.Qty == 0 || s.Item == NoItem }

// Stack is a quantity of one item moving into or out of an inventory.
type Stack struct {
	Item ItemID `json:"item_id"`
	Qty  int    `json:"qty"`
}

// AddResult reports the outcome of AddItem. Leftover > 0 means part of the
// request did not fit.
type AddResult struct {
	Accepted bool `json:"accepted"`
	Leftover int  `json:"leftover"`
}

// Location is where an inventory's owner stands in the world. The
// inventory never interprets it; it is handed to the OverflowSink as-is.
type Location struct {
	MapID  int     `json:"map_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Facing int     `json:"facing"` // RMMV direction: 2 down, 4 left, 6 right, 8 up
}

// Locator reports the current location of an inventory's owner.
type Locator interface {
	Location() Location
}

// FixedLocator is a Locator for owners that never move (chests, bags).
type FixedLocator Location

// Location implements Locator.
func (l FixedLocator) Location() Location { return Location(l) }

// OverflowSink finds or creates world containers for stacks that do not
// fit in an inventory.
type OverflowSink interface {
	// NearbyContainers returns candidate containers within maxDistance of
	// origin, in the order they should be tried.
	NearbyContainers(origin Location, maxDistance float64) []*Inventory
	// SpawnContainer creates a new container near origin holding seed.
	SpawnContainer(origin Location, seed Stack) (*Inventory, error)
}
