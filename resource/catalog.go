package resource

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kasuganosora/lootgrid/game/item"
)

// RMMV data kinds, as used by drop tables and shop goods.
const (
	KindItem   = 1
	KindWeapon = 2
	KindArmor  = 3
)

// KindStride separates the ID ranges of the three data files so weapon 1
// and armor 1 do not collide with item 1. Items keep their own IDs.
const KindStride = 10000

var (
	reMaxStack = regexp.MustCompile(`(?i)<MaxStack:\s*(\d+)\s*>`)
	reItemType = regexp.MustCompile(`(?i)<ItemType:\s*([^>]+?)\s*>`)
)

var itypeNames = map[int]string{
	1: "item",
	2: "key_item",
	3: "hidden_a",
	4: "hidden_b",
}

// UID returns the catalog ID of an RMMV database entry.
func UID(kind, id int) item.ItemID {
	switch kind {
	case KindWeapon:
		return item.ItemID(KindStride + id)
	case KindArmor:
		return item.ItemID(2*KindStride + id)
	default:
		return item.ItemID(id)
	}
}

// Catalog exposes loaded RMMV items, weapons and armors as item
// definitions. It is read-only after construction.
type Catalog struct {
	defs map[item.ItemID]item.Definition
}

// NewCatalog builds a catalog from rl. Items without a <MaxStack:n> notetag
// stack to defaultMaxStack; weapons and armors default to 1.
func NewCatalog(rl *ResourceLoader, defaultMaxStack int) *Catalog {
	if defaultMaxStack < 1 {
		defaultMaxStack = 1
	}
	c := &Catalog{defs: make(map[item.ItemID]item.Definition)}
	for _, it := range rl.Items {
		if it == nil || it.ID <= 0 || it.Name == "" {
			continue
		}
		typ := itypeNames[it.ItypeID]
		if typ == "" {
			typ = "item"
		}
		c.add(UID(KindItem, it.ID), it.Name, it.Description, it.IconIndex, it.Note, typ, defaultMaxStack)
	}
	for _, w := range rl.Weapons {
		if w == nil || w.ID <= 0 || w.Name == "" {
			continue
		}
		c.add(UID(KindWeapon, w.ID), w.Name, w.Description, w.IconIndex, w.Note, "weapon", 1)
	}
	for _, a := range rl.Armors {
		if a == nil || a.ID <= 0 || a.Name == "" {
			continue
		}
		c.add(UID(KindArmor, a.ID), a.Name, a.Description, a.IconIndex, a.Note, "armor", 1)
	}
	return c
}

func (c *Catalog) add(id item.ItemID, name, desc string, icon int, note, typ string, maxStack int) {
	if m := reMaxStack.FindStringSubmatch(note); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			maxStack = n
		}
	}
	if m := reItemType.FindStringSubmatch(note); m != nil {
		typ = strings.ToLower(m[1])
	}
	c.defs[id] = item.Definition{
		ID:          id,
		Name:        name,
		Description: desc,
		Type:        typ,
		MaxStack:    maxStack,
		IconIndex:   icon,
	}
}

// Lookup implements item.Catalog.
func (c *Catalog) Lookup(id item.ItemID) (item.Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }
