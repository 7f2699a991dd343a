package item

import "go.uber.org/zap"

// AddItem puts stack into the inventory.
//
// When the inventory holds none of the item, or only full stacks of it, the
// whole stack goes into the first empty slot unmodified. The stack is not
// clamped to MaxStack on this path. Otherwise the quantity is merged into
// existing stacks through ChangeQuantity. Unplaced quantity is dropped
// through the sink when the matching drop flag is set.
func (inv *Inventory) AddItem(stack Stack, dropIfNoneAdded, dropIfPartialAdded bool) AddResult {
	def, ok := inv.lookup(stack.Item)
	if !ok || stack.Qty <= 0 {
		return AddResult{}
	}

	held := inv.QuantityOf(stack.Item)
	if held == 0 || held%def.MaxStack == 0 {
		slot := inv.firstEmpty()
		if slot == NotFound {
			if dropIfNoneAdded {
				inv.drop(stack, NoSlot)
			}
			return AddResult{Accepted: false, Leftover: stack.Qty}
		}
		inv.slots[slot] = Slot{Item: stack.Item, Qty: stack.Qty}
		inv.changed()
		return AddResult{Accepted: true}
	}

	leftover, err := inv.ChangeQuantity(stack.Item, stack.Qty)
	if err != nil || leftover == stack.Qty {
		if dropIfNoneAdded {
			inv.drop(stack, NoSlot)
		}
		return AddResult{Accepted: false, Leftover: stack.Qty}
	}
	if leftover > 0 && dropIfPartialAdded {
		inv.drop(Stack{Item: stack.Item, Qty: leftover}, NoSlot)
	}
	return AddResult{Accepted: true, Leftover: leftover}
}

// ChangeQuantity adds (delta > 0) or removes (delta < 0) units of id.
//
// Existing stacks are visited in slot order. Removal may span several
// stacks; removing more than is held empties every stack and the excess is
// ignored. Addition tops up non-full stacks and puts any remainder into the
// first empty slot. The returned leftover is the quantity that found no
// room. |delta| may not exceed the item's MaxStack.
func (inv *Inventory) ChangeQuantity(id ItemID, delta int) (int, error) {
	def, ok := inv.lookup(id)
	if !ok {
		return 0, ErrUnknownItem
	}
	if delta > def.MaxStack || -delta > def.MaxStack {
		return 0, ErrExceedsStackLimit
	}
	if delta == 0 {
		return 0, nil
	}

	remaining := delta
	for i := range inv.slots {
		s := &inv.slots[i]
		if s.Empty() || s.Item != id {
			continue
		}
		next := s.Qty + remaining
		switch {
		case remaining < 0 && next == 0:
			inv.clear(i)
			inv.changed()
			return 0, nil
		case remaining < 0 && next < 0:
			remaining = next
			inv.clear(i)
			inv.changed()
		case remaining < 0:
			s.Qty = next
			inv.changed()
			return 0, nil
		case s.Qty >= def.MaxStack:
			// full, try the next stack
		case next > def.MaxStack:
			remaining -= def.MaxStack - s.Qty
			s.Qty = def.MaxStack
			inv.changed()
		default:
			s.Qty = next
			inv.changed()
			return 0, nil
		}
	}

	if remaining <= 0 {
		return 0, nil
	}
	slot := inv.firstEmpty()
	if slot == NotFound {
		inv.logger.Debug("no room for remainder",
			zap.Int("item_id", int(id)),
			zap.Int("leftover", remaining))
		return remaining, nil
	}
	inv.slots[slot] = Slot{Item: id, Qty: remaining}
	inv.changed()
	return 0, nil
}
