package item

// QuantityOf sums the quantity of id over all slots.
func (inv *Inventory) QuantityOf(id ItemID) int {
	if id == NoItem {
		return 0
	}
	total := 0
	for _, s := range inv.slots {
		if !s.Empty() && s.Item == id {
			total += s.Qty
		}
	}
	return total
}

// EmptySlotCount counts the empty slots.
func (inv *Inventory) EmptySlotCount() int {
	n := 0
	for _, s := range inv.slots {
		if s.Empty() {
			n++
		}
	}
	return n
}

// ItemAt returns the contents of slot, or an empty Slot when out of range.
func (inv *Inventory) ItemAt(slot int) Slot {
	if !inv.inRange(slot) {
		return Slot{}
	}
	return inv.slots[slot]
}

// Slots returns a copy of every slot in order.
func (inv *Inventory) Slots() []Slot {
	out := make([]Slot, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// IsEmpty reports whether no slot holds an item.
func (inv *Inventory) IsEmpty() bool {
	for _, s := range inv.slots {
		if !s.Empty() {
			return false
		}
	}
	return true
}

// TypeExists reports whether any held item has the given type tag.
func (inv *Inventory) TypeExists(itemType string) bool {
	for i := range inv.slots {
		if inv.slotHasType(i, itemType) {
			return true
		}
	}
	return false
}

// FindNextOfType walks from start in direction (positive forward, negative
// backward), wrapping around the ends, and returns the first other slot
// whose item has itemType. It returns NotFound after a full lap.
func (inv *Inventory) FindNextOfType(start, direction int, itemType string) int {
	n := len(inv.slots)
	if !inv.inRange(start) || direction == 0 {
		return NotFound
	}
	step := 1
	if direction < 0 {
		step = -1
	}
	for i := (start + step + n) % n; i != start; i = (i + step + n) % n {
		if inv.slotHasType(i, itemType) {
			return i
		}
	}
	return NotFound
}

// FindFirstOfType returns the lowest slot whose item has itemType.
func (inv *Inventory) FindFirstOfType(itemType string) int {
	for i := range inv.slots {
		if inv.slotHasType(i, itemType) {
			return i
		}
	}
	return NotFound
}

func (inv *Inventory) slotHasType(slot int, itemType string) bool {
	s := inv.slots[slot]
	if s.Empty() {
		return false
	}
	def, ok := inv.lookup(s.Item)
	return ok && def.Type == itemType
}
