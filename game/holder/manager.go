// Package holder keeps the inventories of online owners in memory, saves
// them back to the store and fans out their change notifications.
package holder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kasuganosora/lootgrid/cache"
	"github.com/kasuganosora/lootgrid/game/item"
	"github.com/kasuganosora/lootgrid/model"
	"go.uber.org/zap"
)

// ErrNotOpen is returned for owners whose inventory is not loaded.
var ErrNotOpen = errors.New("holder: inventory not open")

const listenerName = "holder"

// Config configures the Manager.
type Config struct {
	Inventory   item.Config
	SnapshotTTL time.Duration
}

// Event is published on ChannelFor(owner) after every notification.
type Event struct {
	OwnerID int64  `json:"owner_id"`
	Event   string `json:"event"`
	Rows    int    `json:"rows"`
}

// Snapshot is the cached, serialisable view of an inventory.
type Snapshot struct {
	OwnerID     int64       `json:"owner_id"`
	Rows        int         `json:"rows"`
	SlotsPerRow int         `json:"slots_per_row"`
	Slots       []item.Slot `json:"slots"`
}

// ChannelFor returns the pub/sub channel carrying ownerID's events.
func ChannelFor(ownerID int64) string {
	return "inventory:" + strconv.FormatInt(ownerID, 10)
}

func snapshotKey(ownerID int64) string {
	return "inventory:snapshot:" + strconv.FormatInt(ownerID, 10)
}

// position is a mutable item.Locator for a moving owner.
type position struct {
	mu  sync.Mutex
	loc item.Location
}

func (p *position) Location() item.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loc
}

func (p *position) set(loc item.Location) {
	p.mu.Lock()
	p.loc = loc
	p.mu.Unlock()
}

type held struct {
	ownerID int64
	inv     *item.Inventory
	pos     *position
	dirty   bool
}

// Manager maintains the registry of open inventories.
//
// Inventories are not safe for concurrent use and drops can reach into
// loot bags shared by several owners, so every inventory operation runs
// under the single manager lock via Do, Pair or Exclusive.
type Manager struct {
	mu      sync.Mutex
	held    map[int64]*held
	cfg     Config
	catalog item.Catalog
	store   *item.Store
	sink    item.OverflowSink
	cache   cache.Cache
	pubsub  cache.PubSub
	logger  *zap.Logger
}

// NewManager creates a Manager. sink, c and ps may be nil.
func NewManager(cfg Config, catalog item.Catalog, store *item.Store, sink item.OverflowSink,
	c cache.Cache, ps cache.PubSub, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		held:    make(map[int64]*held),
		cfg:     cfg,
		catalog: catalog,
		store:   store,
		sink:    sink,
		cache:   c,
		pubsub:  ps,
		logger:  logger,
	}
}

// Open loads ownerID's inventory, creating an empty one when nothing was
// saved. Opening an already open owner only updates its location.
func (m *Manager) Open(ctx context.Context, ownerID int64, loc item.Location) (*item.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.held[ownerID]; ok {
		h.pos.set(loc)
		return h.inv, nil
	}

	pos := &position{loc: loc}
	opts := []item.Option{
		item.WithLocator(pos),
		item.WithLogger(m.logger.With(zap.Int64("owner_id", ownerID))),
	}
	if m.sink != nil {
		opts = append(opts, item.WithSink(m.sink))
	}
	inv := item.New(m.cfg.Inventory, m.catalog, opts...)

	found := false
	if m.store != nil {
		var err error
		found, err = m.store.Load(ctx, ownerID, inv)
		if err != nil {
			return nil, fmt.Errorf("open inventory %d: %w", ownerID, err)
		}
	}

	h := &held{ownerID: ownerID, inv: inv, pos: pos, dirty: !found}
	inv.OnChanged(listenerName, func(inv *item.Inventory) {
		h.dirty = true
		m.writeSnapshot(ownerID, inv)
		m.publish(ownerID, item.EventChanged, inv)
	})
	inv.OnRowAdded(listenerName, func(inv *item.Inventory) {
		m.publish(ownerID, item.EventRowAdded, inv)
	})
	m.held[ownerID] = h
	m.writeSnapshot(ownerID, inv)

	m.logger.Info("inventory opened",
		zap.Int64("owner_id", ownerID),
		zap.Bool("restored", found),
		zap.Int("rows", inv.RowCount()))
	return inv, nil
}

// Get returns the open inventory of ownerID. The caller must not mutate it
// outside Do, Pair or Exclusive.
func (m *Manager) Get(ownerID int64) (*item.Inventory, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.held[ownerID]
	if !ok {
		return nil, false
	}
	return h.inv, true
}

// IsOpen reports whether ownerID's inventory is loaded.
func (m *Manager) IsOpen(ownerID int64) bool {
	_, ok := m.Get(ownerID)
	return ok
}

// Count returns the number of open inventories.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

// Move updates where ownerID stands; drops land relative to it.
func (m *Manager) Move(ownerID int64, loc item.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.held[ownerID]
	if !ok {
		return ErrNotOpen
	}
	h.pos.set(loc)
	return nil
}

// Do runs fn against ownerID's inventory under the manager lock.
func (m *Manager) Do(ownerID int64, fn func(inv *item.Inventory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.held[ownerID]
	if !ok {
		return ErrNotOpen
	}
	return fn(h.inv)
}

// Pair runs fn against two open inventories under the manager lock.
func (m *Manager) Pair(a, b int64, fn func(a, b *item.Inventory) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ha, ok := m.held[a]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotOpen, a)
	}
	hb, ok := m.held[b]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotOpen, b)
	}
	return fn(ha.inv, hb.inv)
}

// Exclusive runs fn under the manager lock, e.g. to sweep loot bags while
// no inventory operation is in flight.
func (m *Manager) Exclusive(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// Close saves ownerID's inventory and forgets it.
func (m *Manager) Close(ctx context.Context, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.held[ownerID]
	if !ok {
		return ErrNotOpen
	}
	if err := m.save(ctx, h); err != nil {
		return err
	}
	h.inv.Unsubscribe(listenerName)
	delete(m.held, ownerID)
	m.dropSnapshot(ctx, ownerID)
	m.logger.Info("inventory closed", zap.Int64("owner_id", ownerID))
	return nil
}

// SaveDirty writes every inventory changed since its last save and returns
// how many were written. It keeps going after a failed save.
func (m *Manager) SaveDirty(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := 0
	var errs []error
	for _, h := range m.held {
		if !h.dirty {
			continue
		}
		if err := m.save(ctx, h); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	if saved > 0 {
		m.logger.Debug("dirty inventories saved", zap.Int("count", saved))
	}
	return saved, errors.Join(errs...)
}

// CloseAll saves and forgets every open inventory.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for id, h := range m.held {
		if err := m.save(ctx, h); err != nil {
			errs = append(errs, err)
		}
		h.inv.Unsubscribe(listenerName)
		delete(m.held, id)
		m.dropSnapshot(ctx, id)
	}
	return errors.Join(errs...)
}

// save persists h. m.mu must be held.
func (m *Manager) save(ctx context.Context, h *held) error {
	if m.store == nil {
		h.dirty = false
		return nil
	}
	if err := m.store.Save(ctx, h.ownerID, model.InventoryKindBackpack, h.inv); err != nil {
		m.logger.Error("inventory save failed", zap.Int64("owner_id", h.ownerID), zap.Error(err))
		return fmt.Errorf("save inventory %d: %w", h.ownerID, err)
	}
	h.dirty = false
	return nil
}

func snapshotOf(ownerID int64, inv *item.Inventory) Snapshot {
	return Snapshot{
		OwnerID:     ownerID,
		Rows:        inv.RowCount(),
		SlotsPerRow: inv.SlotsPerRow(),
		Slots:       inv.Slots(),
	}
}

// Snapshot returns ownerID's layout, from the cache when available.
// Closed owners get ErrNotOpen even while a cached copy is still live.
func (m *Manager) Snapshot(ctx context.Context, ownerID int64) (Snapshot, error) {
	if !m.IsOpen(ownerID) {
		return Snapshot{}, ErrNotOpen
	}
	if m.cache != nil {
		raw, err := m.cache.Get(ctx, snapshotKey(ownerID))
		if err == nil {
			var s Snapshot
			if json.Unmarshal([]byte(raw), &s) == nil {
				return s, nil
			}
		} else if !cache.IsNotFound(err) {
			m.logger.Warn("snapshot cache read failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.held[ownerID]
	if !ok {
		return Snapshot{}, ErrNotOpen
	}
	return snapshotOf(ownerID, h.inv), nil
}

func (m *Manager) writeSnapshot(ownerID int64, inv *item.Inventory) {
	if m.cache == nil {
		return
	}
	data, err := json.Marshal(snapshotOf(ownerID, inv))
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.cache.Set(ctx, snapshotKey(ownerID), string(data), m.cfg.SnapshotTTL); err != nil {
		m.logger.Warn("snapshot cache write failed", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}

// dropSnapshot removes the cached layout of a closed owner.
func (m *Manager) dropSnapshot(ctx context.Context, ownerID int64) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Del(ctx, snapshotKey(ownerID)); err != nil {
		m.logger.Warn("snapshot cache delete failed", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}

func (m *Manager) publish(ownerID int64, event string, inv *item.Inventory) {
	if m.pubsub == nil {
		return
	}
	data, err := json.Marshal(Event{OwnerID: ownerID, Event: event, Rows: inv.RowCount()})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.pubsub.Publish(ctx, ChannelFor(ownerID), string(data)); err != nil {
		m.logger.Warn("inventory event publish failed", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}
