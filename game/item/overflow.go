package item

import (
	"fmt"

	"go.uber.org/zap"
)

// Sink places stack outside the inventory: first into containers near the
// owner, in the order the sink returns them, then into a freshly spawned
// container.
//
// originSlot is the slot the stack comes from, or NoSlot. On success that
// slot is cleared. If the remainder cannot be placed, every container that
// took part of the stack is restored, the origin slot is left as it was and
// ErrOverflowUnresolved is returned.
func (inv *Inventory) Sink(stack Stack, originSlot int) error {
	if stack.Qty <= 0 || stack.Item == NoItem {
		return nil
	}
	if inv.sink == nil {
		return ErrOverflowUnresolved
	}
	origin := inv.locator.Location()

	remaining := stack
	var touched []restorePoint
	for _, bag := range inv.sink.NearbyContainers(origin, inv.cfg.MergeDistance) {
		if bag == nil || bag == inv {
			continue
		}
		before := append([]Slot(nil), bag.slots...)
		res := bag.AddItem(remaining, false, false)
		if !res.Accepted {
			continue
		}
		touched = append(touched, restorePoint{inv: bag, slots: before})
		remaining.Qty = res.Leftover
		if remaining.Qty == 0 {
			break
		}
	}

	if remaining.Qty > 0 {
		if _, err := inv.sink.SpawnContainer(origin, remaining); err != nil {
			inv.logger.Warn("overflow unresolved",
				zap.Int("item_id", int(stack.Item)),
				zap.Int("qty", stack.Qty),
				zap.Int("merged", stack.Qty-remaining.Qty),
				zap.Error(err))
			for i := len(touched) - 1; i >= 0; i-- {
				touched[i].restore()
			}
			return fmt.Errorf("%w: %v", ErrOverflowUnresolved, err)
		}
	}

	inv.logger.Debug("overflow placed",
		zap.Int("item_id", int(stack.Item)),
		zap.Int("qty", stack.Qty),
		zap.Int("origin_slot", originSlot))
	if inv.inRange(originSlot) {
		inv.clear(originSlot)
		inv.changed()
	}
	return nil
}

// drop sinks a stack that never entered the inventory. Failures are logged
// by Sink; the caller already reports the stack as not added.
func (inv *Inventory) drop(stack Stack, originSlot int) {
	_ = inv.Sink(stack, originSlot)
}

// restorePoint is the slot contents of a container before a merge.
type restorePoint struct {
	inv   *Inventory
	slots []Slot
}

func (r restorePoint) restore() {
	copy(r.inv.slots, r.slots)
	r.inv.changed()
}
