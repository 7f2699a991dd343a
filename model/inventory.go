package model

import (
	"time"

	"gorm.io/datatypes"
)

// InventoryKind distinguishes what owns a saved inventory.
type InventoryKind = string

const (
	InventoryKindBackpack InventoryKind = "backpack"
	InventoryKindChest    InventoryKind = "chest"
)

// Inventory is the saved state of one inventory: its row count and the
// JSON slot layout ([{"item_id":1,"qty":3}, ...]).
type Inventory struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   int64          `gorm:"uniqueIndex:idx_inventory_owner;not null" json:"owner_id"`
	Kind      string         `gorm:"size:16;default:backpack" json:"kind"`
	Rows      int            `gorm:"not null" json:"rows"`
	Layout    datatypes.JSON `json:"layout"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
