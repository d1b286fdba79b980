package model

import (
	"time"

	"gorm.io/datatypes"
)

// InventoryRecord persists one account's inventory as an opaque stack
// snapshot produced by the engine's Snapshot hook. The engine owns the
// format; the record just stores bytes.
type InventoryRecord struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64          `gorm:"uniqueIndex:idx_account_inventory,priority:1;not null" json:"account_id"`
	Name      string         `gorm:"uniqueIndex:idx_account_inventory,priority:2;size:64;not null" json:"name"`
	Snapshot  datatypes.JSON `json:"snapshot"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
