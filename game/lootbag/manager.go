// Package lootbag keeps the world containers that catch items dropped out
// of full inventories.
package lootbag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/lootgrid/cache"
	"github.com/kasuganosora/lootgrid/game/item"
	"go.uber.org/zap"
)

var (
	ErrSeedRejected = errors.New("lootbag: seed stack rejected")
	ErrNotFound     = errors.New("lootbag: bag not found")
)

// recentLimit caps the per-map recent drop feed.
const recentLimit = 50

// Config shapes spawned bags.
type Config struct {
	SlotsPerRow int
	Rows        int
	Lifetime    time.Duration // zero keeps bags until they are emptied
	SpawnOffset float64       // distance in front of the owner a new bag lands
}

// Bag is one container lying in the world.
type Bag struct {
	ID        string
	Location  item.Location
	Inventory *item.Inventory
	CreatedAt time.Time
	ExpireAt  time.Time
}

// View is the serialisable form of a bag.
type View struct {
	ID        string        `json:"id"`
	Location  item.Location `json:"location"`
	Slots     []item.Slot   `json:"slots"`
	CreatedAt time.Time     `json:"created_at"`
	ExpireAt  *time.Time    `json:"expire_at,omitempty"`
}

// View snapshots the bag.
func (b *Bag) View() View {
	v := View{
		ID:        b.ID,
		Location:  b.Location,
		Slots:     b.Inventory.Slots(),
		CreatedAt: b.CreatedAt,
	}
	if !b.ExpireAt.IsZero() {
		t := b.ExpireAt
		v.ExpireAt = &t
	}
	return v
}

// Drop is an entry of the recent drop feed.
type Drop struct {
	BagID string        `json:"bag_id"`
	Item  item.ItemID   `json:"item_id"`
	Qty   int           `json:"qty"`
	At    item.Location `json:"at"`
	Time  time.Time     `json:"time"`
}

// Manager is the registry of live bags. It implements item.OverflowSink.
//
// The registry itself is safe for concurrent use; the bag inventories are
// not, so callers serialise inventory mutations the same way they do for
// owner inventories.
type Manager struct {
	mu      sync.RWMutex
	bags    map[string]*Bag
	cfg     Config
	catalog item.Catalog
	cache   cache.Cache
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates a Manager. c may be nil, which disables the recent
// drop feed.
func NewManager(cfg Config, catalog item.Catalog, c cache.Cache, logger *zap.Logger) *Manager {
	if cfg.SlotsPerRow < 1 {
		cfg.SlotsPerRow = 5
	}
	if cfg.Rows < 1 {
		cfg.Rows = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		bags:    make(map[string]*Bag),
		cfg:     cfg,
		catalog: catalog,
		cache:   c,
		logger:  logger,
		now:     time.Now,
	}
}

var _ item.OverflowSink = (*Manager)(nil)

func distance(a, b item.Location) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// NearbyContainers returns the bag inventories on origin's map within
// maxDistance, nearest first. Ties go to the older bag.
func (m *Manager) NearbyContainers(origin item.Location, maxDistance float64) []*item.Inventory {
	type candidate struct {
		bag  *Bag
		dist float64
	}
	m.mu.RLock()
	var found []candidate
	for _, b := range m.bags {
		if b.Location.MapID != origin.MapID {
			continue
		}
		if d := distance(origin, b.Location); d <= maxDistance {
			found = append(found, candidate{b, d})
		}
	}
	m.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].bag.CreatedAt.Before(found[j].bag.CreatedAt)
	})
	out := make([]*item.Inventory, len(found))
	for i, c := range found {
		out[i] = c.bag.Inventory
	}
	return out
}

// spawnPoint is SpawnOffset units in front of origin along its facing.
func (m *Manager) spawnPoint(origin item.Location) item.Location {
	p := origin
	switch origin.Facing {
	case 2:
		p.Y += m.cfg.SpawnOffset
	case 4:
		p.X -= m.cfg.SpawnOffset
	case 6:
		p.X += m.cfg.SpawnOffset
	case 8:
		p.Y -= m.cfg.SpawnOffset
	}
	return p
}

// SpawnContainer creates a bag in front of origin holding seed. A bag that
// cannot take the seed is discarded.
func (m *Manager) SpawnContainer(origin item.Location, seed item.Stack) (*item.Inventory, error) {
	now := m.now()
	loc := m.spawnPoint(origin)
	bag := &Bag{
		ID:        uuid.New().String(),
		Location:  loc,
		CreatedAt: now,
	}
	if m.cfg.Lifetime > 0 {
		bag.ExpireAt = now.Add(m.cfg.Lifetime)
	}
	bag.Inventory = item.New(item.Config{
		SlotsPerRow: m.cfg.SlotsPerRow,
		InitialRows: m.cfg.Rows,
		MaxRows:     m.cfg.Rows,
	}, m.catalog, item.WithLocator(item.FixedLocator(loc)), item.WithLogger(m.logger))

	m.mu.Lock()
	m.bags[bag.ID] = bag
	m.mu.Unlock()

	res := bag.Inventory.AddItem(seed, false, false)
	if !res.Accepted || res.Leftover > 0 {
		m.Remove(bag.ID)
		m.logger.Warn("loot bag seed rejected",
			zap.String("bag_id", bag.ID),
			zap.Int("item_id", int(seed.Item)),
			zap.Int("qty", seed.Qty))
		return nil, fmt.Errorf("%w: item %d x%d", ErrSeedRejected, seed.Item, seed.Qty)
	}

	m.logger.Info("loot bag spawned",
		zap.String("bag_id", bag.ID),
		zap.Int("map_id", loc.MapID),
		zap.Float64("x", loc.X),
		zap.Float64("y", loc.Y),
		zap.Int("item_id", int(seed.Item)),
		zap.Int("qty", seed.Qty))
	m.recordDrop(Drop{BagID: bag.ID, Item: seed.Item, Qty: seed.Qty, At: loc, Time: now})
	return bag.Inventory, nil
}

func recentKey(mapID int) string {
	return "lootbag:recent:" + strconv.Itoa(mapID)
}

func (m *Manager) recordDrop(d Drop) {
	if m.cache == nil {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	key := recentKey(d.At.MapID)
	if err := m.cache.LPush(ctx, key, string(data)); err != nil {
		m.logger.Warn("record drop failed", zap.String("bag_id", d.BagID), zap.Error(err))
		return
	}
	_ = m.cache.LTrim(ctx, key, 0, recentLimit-1)
}

// Recent returns up to n of the latest drops on mapID, newest first.
func (m *Manager) Recent(ctx context.Context, mapID, n int) ([]Drop, error) {
	if m.cache == nil || n <= 0 {
		return nil, nil
	}
	raw, err := m.cache.LRange(ctx, recentKey(mapID), 0, int64(n-1))
	if err != nil {
		return nil, err
	}
	out := make([]Drop, 0, len(raw))
	for _, r := range raw {
		var d Drop
		if err := json.Unmarshal([]byte(r), &d); err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Get returns the bag with the given id.
func (m *Manager) Get(id string) (*Bag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// Remove forgets a bag. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.bags, id)
	m.mu.Unlock()
}

// List returns the bags on mapID, oldest first.
func (m *Manager) List(mapID int) []*Bag {
	m.mu.RLock()
	out := make([]*Bag, 0)
	for _, b := range m.bags {
		if b.Location.MapID == mapID {
			out = append(out, b)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Count returns the number of live bags.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bags)
}

// Sweep removes bags that are empty or past their lifetime and returns how
// many were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, b := range m.bags {
		expired := !b.ExpireAt.IsZero() && !now.Before(b.ExpireAt)
		if expired || b.Inventory.IsEmpty() {
			delete(m.bags, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("loot bags swept", zap.Int("removed", removed), zap.Int("remaining", len(m.bags)))
	}
	return removed
}
