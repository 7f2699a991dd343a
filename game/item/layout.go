package item

import (
	"encoding/json"
	"fmt"
)

// SlotRecord is the saved form of one slot. Item is NoItem for empty slots.
type SlotRecord struct {
	Item ItemID `json:"item_id"`
	Qty  int    `json:"qty"`
}

// Layout returns the save layout of the inventory, one record per slot.
func (inv *Inventory) Layout() []SlotRecord {
	out := make([]SlotRecord, len(inv.slots))
	for i, s := range inv.slots {
		if !s.Empty() {
			out[i] = SlotRecord{Item: s.Item, Qty: s.Qty}
		}
	}
	return out
}

// Load overwrites slots positionally with records. Only the first
// min(len(records), SlotCount()) slots are written; extra records and
// extra slots are left alone. One changed notification is fired.
func (inv *Inventory) Load(records []SlotRecord) {
	n := len(records)
	if n > len(inv.slots) {
		n = len(inv.slots)
	}
	for i := 0; i < n; i++ {
		r := records[i]
		if r.Item == NoItem || r.Qty <= 0 {
			inv.slots[i] = Slot{}
			continue
		}
		inv.slots[i] = Slot{Item: r.Item, Qty: r.Qty}
	}
	inv.changed()
}

// GrowTo appends free rows until the inventory has rows rows, bounded by
// MaxRows. It restores a saved row count without charging upgrade items
// and fires no notifications.
func (inv *Inventory) GrowTo(rows int) {
	if rows > inv.cfg.MaxRows {
		rows = inv.cfg.MaxRows
	}
	for inv.RowCount() < rows {
		inv.slots = append(inv.slots, make([]Slot, inv.cfg.SlotsPerRow)...)
	}
}

// EncodeLayout renders records as JSON.
func EncodeLayout(records []SlotRecord) ([]byte, error) {
	return json.Marshal(records)
}

// DecodeLayout parses the JSON produced by EncodeLayout.
func DecodeLayout(data []byte) ([]SlotRecord, error) {
	var records []SlotRecord
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return records, nil
}
