package item

import (
	"go.uber.org/zap"
)

// Config fixes the shape and upgrade rules of an inventory.
type Config struct {
	SlotsPerRow   int     `mapstructure:"slots_per_row"`
	InitialRows   int     `mapstructure:"initial_rows"`
	MaxRows       int     `mapstructure:"max_rows"`
	UpgradeItem   ItemID  `mapstructure:"upgrade_item_id"` // NoItem disables the upgrade cost
	UpgradeAmount int     `mapstructure:"upgrade_amount"`
	MergeDistance float64 `mapstructure:"merge_distance"` // radius searched for loot bags to merge into
}

// DefaultConfig mirrors the stock backpack: 1 row of 5, growing to 5 rows.
func DefaultConfig() Config {
	return Config{
		SlotsPerRow:   5,
		InitialRows:   1,
		MaxRows:       5,
		UpgradeAmount: 1,
		MergeDistance: 500,
	}
}

func (c Config) normalized() Config {
	if c.SlotsPerRow < 1 {
		c.SlotsPerRow = 1
	}
	if c.MaxRows < 1 {
		c.MaxRows = 1
	}
	if c.InitialRows < 1 {
		c.InitialRows = 1
	}
	if c.UpgradeAmount < 0 {
		c.UpgradeAmount = 0
	}
	if c.MergeDistance < 0 {
		c.MergeDistance = 0
	}
	return c
}

// Option customises an Inventory at construction.
type Option func(*Inventory)

// WithSink sets where overflowing stacks are dropped. Without a sink every
// drop fails with ErrOverflowUnresolved.
func WithSink(s OverflowSink) Option {
	return func(inv *Inventory) { inv.sink = s }
}

// WithLocator sets how the owner's position is resolved for drops.
func WithLocator(l Locator) Option {
	return func(inv *Inventory) { inv.locator = l }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(inv *Inventory) {
		if l != nil {
			inv.logger = l
		}
	}
}

// Inventory is a grid of slots, rows x SlotsPerRow, owned by one game
// entity. It is not safe for concurrent use.
type Inventory struct {
	cfg       Config
	catalog   Catalog
	sink      OverflowSink
	locator   Locator
	slots     []Slot
	listeners listeners
	logger    *zap.Logger
}

// New creates an inventory with cfg.InitialRows empty rows. The initial
// rows are free; no upgrade item is charged.
func New(cfg Config, catalog Catalog, opts ...Option) *Inventory {
	cfg = cfg.normalized()
	inv := &Inventory{
		cfg:     cfg,
		catalog: catalog,
		locator: FixedLocator{},
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(inv)
	}
	rows := cfg.InitialRows
	if rows > cfg.MaxRows {
		rows = cfg.MaxRows
	}
	inv.slots = make([]Slot, rows*cfg.SlotsPerRow)
	return inv
}

// RowCount returns the current number of rows.
func (inv *Inventory) RowCount() int { return len(inv.slots) / inv.cfg.SlotsPerRow }

// SlotCount returns the number of slots.
func (inv *Inventory) SlotCount() int { return len(inv.slots) }

// SlotsPerRow returns the row width.
func (inv *Inventory) SlotsPerRow() int { return inv.cfg.SlotsPerRow }

// UpgradeAmount returns how many upgrade items one AddRows call costs.
func (inv *Inventory) UpgradeAmount() int { return inv.cfg.UpgradeAmount }

// AddRows appends up to count empty rows, never exceeding MaxRows.
//
// Unless ignoreUpgradeCost is set, UpgradeAmount units of UpgradeItem are
// first taken from this inventory. The returned count is the number of rows
// actually appended, which may be less than requested when the cap is hit;
// a nil error means the capacity and cost checks passed.
func (inv *Inventory) AddRows(count int, ignoreUpgradeCost bool) (int, error) {
	if count <= 0 {
		return 0, ErrInvalidRowCount
	}
	if inv.RowCount() >= inv.cfg.MaxRows {
		return 0, ErrCapacityExceeded
	}
	if !ignoreUpgradeCost && inv.cfg.UpgradeItem != NoItem && inv.cfg.UpgradeAmount > 0 {
		if inv.QuantityOf(inv.cfg.UpgradeItem) < inv.cfg.UpgradeAmount {
			return 0, ErrInsufficientUpgradeCost
		}
		if err := inv.chargeUpgrade(); err != nil {
			return 0, err
		}
	}

	added := 0
	for added < count && inv.RowCount() < inv.cfg.MaxRows {
		inv.slots = append(inv.slots, make([]Slot, inv.cfg.SlotsPerRow)...)
		added++
	}
	for i := 0; i < added; i++ {
		inv.rowAdded()
	}
	inv.changed()

	inv.logger.Debug("inventory rows added",
		zap.Int("requested", count),
		zap.Int("added", added),
		zap.Int("rows", inv.RowCount()))
	return added, nil
}

// chargeUpgrade removes UpgradeAmount units of UpgradeItem. ChangeQuantity
// moves at most MaxStack units per call, so larger costs are taken in
// several calls. The caller has checked that enough is held.
func (inv *Inventory) chargeUpgrade() error {
	def, ok := inv.lookup(inv.cfg.UpgradeItem)
	if !ok {
		return ErrUnknownItem
	}
	for left := inv.cfg.UpgradeAmount; left > 0; {
		n := min(left, def.MaxStack)
		if _, err := inv.ChangeQuantity(inv.cfg.UpgradeItem, -n); err != nil {
			return err
		}
		left -= n
	}
	return nil
}

func (inv *Inventory) inRange(slot int) bool {
	return slot >= 0 && slot < len(inv.slots)
}

func (inv *Inventory) firstEmpty() int {
	for i, s := range inv.slots {
		if s.Empty() {
			return i
		}
	}
	return NotFound
}

func (inv *Inventory) clear(slot int) {
	inv.slots[slot] = Slot{}
}

func (inv *Inventory) lookup(id ItemID) (Definition, bool) {
	if id == NoItem || inv.catalog == nil {
		return Definition{}, false
	}
	def, ok := inv.catalog.Lookup(id)
	if ok && def.MaxStack < 1 {
		def.MaxStack = 1
	}
	return def, ok
}
