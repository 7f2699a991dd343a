package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records inventory actions worth keeping: row upgrades, drops
// into loot bags and transfers between inventories.
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	OwnerID   int64          `gorm:"index:idx_audit_owner" json:"owner_id"`
	Action    string         `gorm:"size:64;not null" json:"action"`
	Detail    datatypes.JSON `json:"detail"`
	Error     string         `gorm:"type:text" json:"error"`
	MapID     int            `json:"map_id"`
	CreatedAt time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
