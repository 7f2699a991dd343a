package item

// MoveItem moves the contents of from onto to. Stacks of the same item are
// merged, filling to up to MaxStack and leaving any surplus in from; any
// other combination swaps the two slots.
func (inv *Inventory) MoveItem(from, to int) bool {
	if !inv.inRange(from) || !inv.inRange(to) || from == to {
		return false
	}
	src, dst := inv.slots[from], inv.slots[to]

	if !src.Empty() && !dst.Empty() && src.Item == dst.Item {
		limit := dst.Qty
		if def, ok := inv.lookup(dst.Item); ok {
			limit = def.MaxStack
		}
		if total := src.Qty + dst.Qty; total <= limit {
			inv.slots[to].Qty = total
			inv.clear(from)
		} else if dst.Qty < limit {
			inv.slots[to].Qty = limit
			inv.slots[from].Qty = total - limit
		} else {
			return false
		}
		inv.changed()
		return true
	}

	inv.slots[from], inv.slots[to] = dst, src
	inv.changed()
	return true
}

// RemoveItem clears slot. With shouldDrop the contents are first handed to
// the overflow sink; if they cannot be placed the slot is kept as it was.
func (inv *Inventory) RemoveItem(slot int, shouldDrop bool) bool {
	if !inv.inRange(slot) {
		return false
	}
	if shouldDrop && !inv.slots[slot].Empty() {
		s := inv.slots[slot]
		// Sink clears the slot itself once the stack is placed.
		return inv.Sink(Stack{Item: s.Item, Qty: s.Qty}, slot) == nil
	}
	inv.clear(slot)
	inv.changed()
	return true
}

// SplitStack moves n units of slot into the first empty slot.
// It requires 0 < n < current quantity and a free slot.
func (inv *Inventory) SplitStack(slot, n int) bool {
	if !inv.inRange(slot) || inv.slots[slot].Empty() {
		return false
	}
	if n <= 0 || n >= inv.slots[slot].Qty {
		return false
	}
	empty := inv.firstEmpty()
	if empty == NotFound {
		return false
	}
	inv.slots[empty] = Slot{Item: inv.slots[slot].Item, Qty: n}
	inv.slots[slot].Qty -= n
	inv.changed()
	return true
}

// MoveToInventory transfers the stack in slot to target. Whatever target
// could not take stays in slot. The two inventories are not updated
// atomically.
func (inv *Inventory) MoveToInventory(slot int, target *Inventory) bool {
	if target == nil || target == inv || !inv.inRange(slot) || inv.slots[slot].Empty() {
		return false
	}
	s := inv.slots[slot]
	res := target.AddItem(Stack{Item: s.Item, Qty: s.Qty}, false, false)
	if !res.Accepted {
		return false
	}
	if res.Leftover > 0 {
		inv.slots[slot].Qty = res.Leftover
	} else {
		inv.clear(slot)
	}
	inv.changed()
	return true
}

// PlaceAt writes stack into slot without checking what is there. It exists
// for drag and drop onto a slot the caller knows to be empty.
func (inv *Inventory) PlaceAt(stack Stack, slot int) bool {
	if !inv.inRange(slot) {
		return false
	}
	if stack.Qty <= 0 || stack.Item == NoItem {
		inv.clear(slot)
	} else {
		inv.slots[slot] = Slot{Item: stack.Item, Qty: stack.Qty}
	}
	inv.changed()
	return true
}
